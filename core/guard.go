package core

import (
	"context"
	"errors"
	"time"
)

const defaultTimeoutRecordWriteBudget = 3 * time.Second

// GuardedCall describes one downstream processor call executed under the
// timeout guard.
type GuardedCall struct {
	ProcessorID          string
	TransactionReference string
	Request              InvokeRequest
	// Snapshot is the original request payload persisted with the timeout
	// record for later reconciliation.
	Snapshot map[string]any
}

// TimeoutGuard wraps exactly one downstream call with the per-processor
// budget. On expiry it persists a TimeoutRecord and only then raises the
// canonical unreachable error; the persistence write is best-effort and never
// replaces the timeout error. A late downstream response is discarded: the
// call goroutine writes into a buffered channel nobody reads and its context
// is already cancelled, so no unguarded success path remains.
type TimeoutGuard struct {
	invoker  Invoker
	budgets  TimeoutConfig
	timeouts TimeoutStore
	logger   Logger
	clock    Clock
}

func NewTimeoutGuard(invoker Invoker, budgets TimeoutConfig, timeouts TimeoutStore, logger Logger, clock Clock) *TimeoutGuard {
	if clock == nil {
		clock = time.Now
	}
	return &TimeoutGuard{
		invoker:  invoker,
		budgets:  budgets,
		timeouts: timeouts,
		logger:   logger,
		clock:    clock,
	}
}

type guardOutcome struct {
	response InvokeResponse
	err      error
}

// Invoke executes the call under its budget.
func (g *TimeoutGuard) Invoke(ctx context.Context, call GuardedCall) (InvokeResponse, error) {
	if g == nil || g.invoker == nil {
		return InvokeResponse{}, NewError(ErrorCodeInternal, map[string]any{"reason": "timeout guard is not configured"})
	}
	if ctx == nil {
		ctx = context.Background()
	}

	callCtx, cancel := context.WithTimeout(ctx, g.budgets.Budget(call.ProcessorID))
	defer cancel()

	results := make(chan guardOutcome, 1)
	go func() {
		response, err := g.invoker.Invoke(callCtx, call.Request)
		results <- guardOutcome{response: response, err: err}
	}()

	select {
	case out := <-results:
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
			return InvokeResponse{}, g.expire(ctx, call)
		}
		return out.response, out.err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			// The caller cancelled, not the budget.
			return InvokeResponse{}, WrapError(ctx.Err(), ErrorCodeUnreachable, map[string]any{
				"processor": call.ProcessorID,
			})
		}
		return InvokeResponse{}, g.expire(ctx, call)
	}
}

// expire persists the timeout record, then returns the canonical unreachable
// error. Exactly one record per invocation: both select arms funnel here and
// only one can fire.
func (g *TimeoutGuard) expire(ctx context.Context, call GuardedCall) error {
	if g.timeouts != nil {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultTimeoutRecordWriteBudget)
		defer cancel()

		record := TimeoutRecord{
			TransactionReference: call.TransactionReference,
			ProcessorID:          call.ProcessorID,
			Status:               TransactionStatusDeclined,
			Request:              call.Snapshot,
			CreatedAt:            g.clock().UTC(),
		}
		if err := g.timeouts.Record(writeCtx, record); err != nil && g.logger != nil {
			g.logger.Error("timeout record write failed",
				"processor", call.ProcessorID,
				"transaction_reference", call.TransactionReference,
				"error", err.Error(),
			)
		}
	}
	return UnreachableError(call.ProcessorID)
}
