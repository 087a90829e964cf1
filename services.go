package acquiring

import "github.com/goliatone/go-acquiring/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type Provider = core.Provider
type ProviderRegistry = core.ProviderRegistry
type Invoker = core.Invoker
type TransactionStore = core.TransactionStore
type TimeoutStore = core.TimeoutStore
type MerchantInfoStore = core.MerchantInfoStore

type ChargeInput = core.ChargeInput
type PreAuthInput = core.PreAuthInput
type ReAuthInput = core.ReAuthInput
type CaptureInput = core.CaptureInput
type TokenizeInput = core.TokenizeInput
type AccountValidationInput = core.AccountValidationInput

type CanonicalAuthorizationResult = core.CanonicalAuthorizationResult

var (
	WithLogger           = core.WithLogger
	WithLoggerProvider   = core.WithLoggerProvider
	WithMetricsRecorder  = core.WithMetricsRecorder
	WithTransactionStore = core.WithTransactionStore
	WithRegistry         = core.WithRegistry
	WithConfigProvider   = core.WithConfigProvider
	WithOptionsResolver  = core.WithOptionsResolver
	WithClock            = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
