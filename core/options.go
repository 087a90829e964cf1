package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

// ConfigProvider loads configuration from an external source on top of the
// defaults.
type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

// RawConfigLoader yields an untyped configuration document.
type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// OptionsResolver merges defaults, loaded and runtime configuration layers.
type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metrics         MetricsRecorder
	transactions    TransactionStore
	registry        *ProviderRegistry
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	clock           Clock
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metrics = recorder
	}
}

func WithTransactionStore(store TransactionStore) Option {
	return func(b *serviceBuilder) {
		b.transactions = store
	}
}

func WithRegistry(registry *ProviderRegistry) Option {
	return func(b *serviceBuilder) {
		b.registry = registry
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithClock(clock Clock) Option {
	return func(b *serviceBuilder) {
		b.clock = clock
	}
}

// NewService resolves configuration through the defaults < loaded < runtime
// layer stack and assembles the service.
func NewService(runtime Config, options ...Option) (*Service, error) {
	builder := &serviceBuilder{runtimeConfig: runtime}
	for _, option := range options {
		if option != nil {
			option(builder)
		}
	}

	defaults := DefaultConfig()
	loaded := defaults
	if builder.configProvider != nil {
		var err error
		loaded, err = builder.configProvider.Load(context.Background(), defaults)
		if err != nil {
			return nil, fmt.Errorf("core: load config: %w", err)
		}
	}

	resolver := builder.optionsResolver
	if resolver == nil {
		resolver = GoOptionsResolver{}
	}
	resolved, err := resolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, fmt.Errorf("core: resolve config: %w", err)
	}

	_, logger := glog.Resolve(resolved.ServiceName, builder.loggerProvider, builder.logger)

	registry := builder.registry
	if registry == nil {
		registry = NewProviderRegistry()
	}

	clock := builder.clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		config:       resolved,
		registry:     registry,
		resolver:     NewChargeResolver(builder.transactions, logger),
		normalizer:   NewResponseNormalizer(),
		logger:       logger,
		metrics:      builder.metrics,
		transactions: builder.transactions,
		clock:        clock,
	}, nil
}

type staticRawConfigLoader struct{}

func (staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	return map[string]any{}, nil
}

// CfgxConfigProvider loads configuration through cfgx from any raw loader.
type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver merges configuration layers with deterministic
// precedence: defaults < loaded < runtime.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || strings.TrimSpace(cfg.DirectAcquirerID) != "" {
		layer["direct_acquirer_id"] = cfg.DirectAcquirerID
	}
	if includeZero || cfg.Timeouts.DefaultMS > 0 || len(cfg.Timeouts.ProcessorMS) > 0 {
		timeouts := map[string]any{}
		if includeZero || cfg.Timeouts.DefaultMS > 0 {
			timeouts["default_ms"] = cfg.Timeouts.DefaultMS
		}
		if includeZero || len(cfg.Timeouts.ProcessorMS) > 0 {
			timeouts["processor_ms"] = cloneIntMap(cfg.Timeouts.ProcessorMS)
		}
		layer["timeouts"] = timeouts
	}
	if includeZero || cfg.CardValidation.ZeroAmountEnabled || len(cfg.CardValidation.ExcludedCountries) > 0 {
		layer["card_validation"] = map[string]any{
			"zero_amount_enabled": cfg.CardValidation.ZeroAmountEnabled,
			"excluded_countries":  append([]string(nil), cfg.CardValidation.ExcludedCountries...),
		}
	}
	if includeZero || len(cfg.Facilitators.IDs) > 0 {
		layer["facilitators"] = map[string]any{
			"ids": cloneStringMap(cfg.Facilitators.IDs),
		}
	}
	if includeZero || strings.TrimSpace(cfg.Endpoints.Stage) != "" || len(cfg.Endpoints.Routes) > 0 {
		endpoints := map[string]any{}
		if includeZero || strings.TrimSpace(cfg.Endpoints.Stage) != "" {
			endpoints["stage"] = cfg.Endpoints.Stage
		}
		if includeZero || len(cfg.Endpoints.Routes) > 0 {
			endpoints["routes"] = cloneStringMap(cfg.Endpoints.Routes)
		}
		layer["endpoints"] = endpoints
	}
	return layer
}

func cloneStringMap(source map[string]string) map[string]any {
	out := make(map[string]any, len(source))
	for key, value := range source {
		out[key] = value
	}
	return out
}

func cloneIntMap(source map[string]int) map[string]any {
	out := make(map[string]any, len(source))
	for key, value := range source {
		out[key] = value
	}
	return out
}
