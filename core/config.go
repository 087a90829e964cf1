package core

import (
	"fmt"
	"strings"
	"time"
)

// TimeoutConfig holds the per-processor downstream call budgets in
// milliseconds.
type TimeoutConfig struct {
	DefaultMS   int            `koanf:"default_ms" mapstructure:"default_ms"`
	ProcessorMS map[string]int `koanf:"processor_ms" mapstructure:"processor_ms"`
}

// Budget resolves the call budget for a processor, falling back to the
// default when the processor has no dedicated entry.
func (c TimeoutConfig) Budget(processorID string) time.Duration {
	if ms, ok := c.ProcessorMS[strings.TrimSpace(processorID)]; ok && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return time.Duration(c.DefaultMS) * time.Millisecond
}

// CardValidationConfig controls the zero-amount account-validation rule.
type CardValidationConfig struct {
	ZeroAmountEnabled bool     `koanf:"zero_amount_enabled" mapstructure:"zero_amount_enabled"`
	ExcludedCountries []string `koanf:"excluded_countries" mapstructure:"excluded_countries"`
}

// Excluded reports whether the merchant country is excluded from the
// zero-amount validation rule.
func (c CardValidationConfig) Excluded(country string) bool {
	for _, excluded := range c.ExcludedCountries {
		if strings.EqualFold(strings.TrimSpace(excluded), strings.TrimSpace(country)) {
			return true
		}
	}
	return false
}

// FacilitatorConfig is the brand-specific payment-facilitator id table used
// by business-partner jurisdictions.
type FacilitatorConfig struct {
	IDs map[string]string `koanf:"ids" mapstructure:"ids"`
}

// ID resolves the facilitator id for a card brand.
func (c FacilitatorConfig) ID(brand string) (string, bool) {
	id, ok := c.IDs[strings.ToLower(strings.TrimSpace(brand))]
	return id, ok && strings.TrimSpace(id) != ""
}

// EndpointConfig resolves downstream endpoint names per deployment stage.
type EndpointConfig struct {
	Stage  string            `koanf:"stage" mapstructure:"stage"`
	Routes map[string]string `koanf:"routes" mapstructure:"routes"`
}

type Config struct {
	ServiceName      string               `koanf:"service_name" mapstructure:"service_name"`
	DirectAcquirerID string               `koanf:"direct_acquirer_id" mapstructure:"direct_acquirer_id"`
	Timeouts         TimeoutConfig        `koanf:"timeouts" mapstructure:"timeouts"`
	CardValidation   CardValidationConfig `koanf:"card_validation" mapstructure:"card_validation"`
	Facilitators     FacilitatorConfig    `koanf:"facilitators" mapstructure:"facilitators"`
	Endpoints        EndpointConfig       `koanf:"endpoints" mapstructure:"endpoints"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:      "acquiring",
		DirectAcquirerID: "kushki",
		Timeouts: TimeoutConfig{
			DefaultMS:   25000,
			ProcessorMS: map[string]int{},
		},
		CardValidation: CardValidationConfig{
			ZeroAmountEnabled: true,
			ExcludedCountries: []string{"Mexico"},
		},
		Facilitators: FacilitatorConfig{IDs: map[string]string{}},
		Endpoints: EndpointConfig{
			Stage:  "primary",
			Routes: map[string]string{},
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.DirectAcquirerID) == "" {
		return fmt.Errorf("core: direct_acquirer_id is required")
	}
	if c.Timeouts.DefaultMS <= 0 {
		return fmt.Errorf("core: timeouts.default_ms must be positive")
	}
	for processor, ms := range c.Timeouts.ProcessorMS {
		if ms <= 0 {
			return fmt.Errorf("core: timeouts.processor_ms[%s] must be positive", processor)
		}
	}
	return nil
}
