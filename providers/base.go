package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-acquiring/core"
)

// Dependencies is the collaborator set shared by processor integrations.
type Dependencies struct {
	Guard     *core.TimeoutGuard
	Logger    core.Logger
	Config    core.Config
	Merchants core.MerchantInfoStore
}

// Base carries the per-processor identity, error table and collaborators.
// Processor packages embed it and add their wire contracts on top.
type Base struct {
	id    string
	table core.ProcessorErrorTable
	deps  Dependencies
}

func NewBase(id string, table core.ProcessorErrorTable, deps Dependencies) Base {
	table.Processor = id
	return Base{id: id, table: table, deps: deps}
}

func (b Base) ID() string {
	return b.id
}

// Config exposes the resolved service configuration.
func (b Base) Config() core.Config {
	return b.deps.Config
}

// Logger exposes the provider logger, never nil-checked by callers.
func (b Base) Logger() core.Logger {
	return b.deps.Logger
}

// Merchants exposes the merchant-info store for best-effort lookups.
func (b Base) Merchants() core.MerchantInfoStore {
	return b.deps.Merchants
}

// ErrorTable exposes the processor-owned classification table.
func (b Base) ErrorTable() core.ProcessorErrorTable {
	return b.table
}

// Unsupported fails fast with the canonical unsupported-operation error.
func (b Base) Unsupported(operation string) (*core.CanonicalAuthorizationResult, error) {
	return nil, core.UnsupportedOperationError(b.id, operation)
}

// Call runs one guarded downstream call and decodes the JSON response into
// out. A response body that cannot be decoded is a processor fault.
func (b Base) Call(ctx context.Context, operation, transactionReference string, body any, out any) error {
	if b.deps.Guard == nil {
		return core.NewError(core.ErrorCodeInternal, map[string]any{
			"processor": b.id,
			"reason":    "provider has no timeout guard",
		})
	}

	response, err := b.deps.Guard.Invoke(ctx, core.GuardedCall{
		ProcessorID:          b.id,
		TransactionReference: transactionReference,
		Request: core.InvokeRequest{
			Endpoint: EndpointName(b.deps.Config.Endpoints, b.id, operation),
			Body:     body,
		},
		Snapshot: Snapshot(body),
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(response.Body, out); err != nil {
		return core.WrapError(err, core.ErrorCodeProcessorFault, map[string]any{
			"processor": b.id,
			"operation": operation,
		})
	}
	return nil
}

// Classify folds a processor-native failure into the canonical taxonomy.
func (b Base) Classify(nativeCode, nativeText string, raw map[string]any, source error) error {
	return b.table.Classify(nativeCode, nativeText, raw, source)
}

// EndpointName resolves the downstream endpoint for a (processor, operation)
// pair: an explicit route wins, otherwise the conventional per-stage name.
func EndpointName(cfg core.EndpointConfig, processor, operation string) string {
	key := processor + "." + operation
	if route, ok := cfg.Routes[key]; ok && strings.TrimSpace(route) != "" {
		return route
	}
	return fmt.Sprintf("usrv-card-%s-%s-%s", processor, operation, cfg.Stage)
}

// Snapshot renders the wire request as a generic map for the timeout record.
func Snapshot(body any) map[string]any {
	if body == nil {
		return nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil
	}
	snapshot := map[string]any{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil
	}
	return snapshot
}
