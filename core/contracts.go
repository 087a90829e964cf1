package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Provider is the canonical contract every processor integration implements.
// Providers that do not support an operation must still implement it and fail
// fast with the canonical unsupported-operation error so callers can iterate
// over providers polymorphically.
type Provider interface {
	ID() string
	Tokenize(ctx context.Context, in TokenizeInput) (*CanonicalAuthorizationResult, error)
	Charge(ctx context.Context, in ChargeInput) (*CanonicalAuthorizationResult, error)
	PreAuthorize(ctx context.Context, in PreAuthInput) (*CanonicalAuthorizationResult, error)
	ReAuthorize(ctx context.Context, in ReAuthInput) (*CanonicalAuthorizationResult, error)
	Capture(ctx context.Context, in CaptureInput) (*CanonicalAuthorizationResult, error)
	ValidateAccount(ctx context.Context, in AccountValidationInput) (*CanonicalAuthorizationResult, error)
}

// InvokeRequest is a single downstream processor call. Endpoint is resolved
// from a (processor, operation, stage) routing table external to this core.
type InvokeRequest struct {
	Endpoint string
	Body     any
}

// InvokeResponse is the raw downstream response body.
type InvokeResponse struct {
	Body []byte
}

// Invoker executes one downstream processor call.
type Invoker interface {
	Invoke(ctx context.Context, req InvokeRequest) (InvokeResponse, error)
}

// InvokerFunc adapts a function to the Invoker contract.
type InvokerFunc func(ctx context.Context, req InvokeRequest) (InvokeResponse, error)

func (f InvokerFunc) Invoke(ctx context.Context, req InvokeRequest) (InvokeResponse, error) {
	return f(ctx, req)
}

// TransactionStore resolves stored transactions by gateway reference. A nil
// transaction with nil error means the reference is unknown.
type TransactionStore interface {
	GetByReference(ctx context.Context, reference string) (*Transaction, error)
}

// TimeoutStore persists timeout records into the per-processor timeout table.
type TimeoutStore interface {
	Record(ctx context.Context, record TimeoutRecord) error
}

// MerchantInfoStore serves the best-effort FIS merchant lookups. Both lookups
// may return nil with nil error when the merchant has no stored info.
type MerchantInfoStore interface {
	Hierarchy(ctx context.Context, merchantID string) (*HierarchyInfo, error)
	CustomerInfo(ctx context.Context, merchantID string) (*CustomerInfo, error)
}

// MetricsRecorder receives operation counters and latency histograms.
type MetricsRecorder interface {
	Counter(ctx context.Context, name string, value int64, tags map[string]string)
	Histogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// Clock abstracts time for the guard and the stores.
type Clock func() time.Time

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
