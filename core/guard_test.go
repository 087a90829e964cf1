package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingTimeoutStore struct {
	mu      sync.Mutex
	records []TimeoutRecord
	err     error
}

func (s *recordingTimeoutStore) Record(ctx context.Context, record TimeoutRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func (s *recordingTimeoutStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestTimeoutGuardReturnsResponse(t *testing.T) {
	guard := NewTimeoutGuard(
		InvokerFunc(func(ctx context.Context, req InvokeRequest) (InvokeResponse, error) {
			return InvokeResponse{Body: []byte(`{"ok":true}`)}, nil
		}),
		TimeoutConfig{DefaultMS: 1000},
		&recordingTimeoutStore{},
		nil,
		nil,
	)

	response, err := guard.Invoke(context.Background(), GuardedCall{ProcessorID: "kushki"})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if string(response.Body) != `{"ok":true}` {
		t.Fatalf("unexpected body %q", response.Body)
	}
}

func TestTimeoutGuardExpiryWritesExactlyOneRecord(t *testing.T) {
	store := &recordingTimeoutStore{}
	guard := NewTimeoutGuard(
		InvokerFunc(func(ctx context.Context, req InvokeRequest) (InvokeResponse, error) {
			<-ctx.Done()
			return InvokeResponse{}, ctx.Err()
		}),
		TimeoutConfig{DefaultMS: 20},
		store,
		nil,
		nil,
	)

	snapshot := map[string]any{"token": "tok-1"}
	_, err := guard.Invoke(context.Background(), GuardedCall{
		ProcessorID:          "kushki",
		TransactionReference: "ref-1",
		Snapshot:             snapshot,
	})
	if !IsErrorCode(err, ErrorCodeUnreachable) {
		t.Fatalf("expected %s, got %v", ErrorCodeUnreachable, err)
	}

	if got := store.count(); got != 1 {
		t.Fatalf("expected exactly one timeout record, got %d", got)
	}
	record := store.records[0]
	if record.TransactionReference != "ref-1" {
		t.Fatalf("unexpected reference %q", record.TransactionReference)
	}
	if record.ProcessorID != "kushki" {
		t.Fatalf("unexpected processor %q", record.ProcessorID)
	}
	if record.Status != TransactionStatusDeclined {
		t.Fatalf("unexpected status %q", record.Status)
	}
	if record.Request["token"] != "tok-1" {
		t.Fatalf("request snapshot not persisted: %v", record.Request)
	}
}

func TestTimeoutGuardRecordWriteFailureStillReturnsUnreachable(t *testing.T) {
	store := &recordingTimeoutStore{err: errors.New("db down")}
	guard := NewTimeoutGuard(
		InvokerFunc(func(ctx context.Context, req InvokeRequest) (InvokeResponse, error) {
			<-ctx.Done()
			return InvokeResponse{}, ctx.Err()
		}),
		TimeoutConfig{DefaultMS: 20},
		store,
		nil,
		nil,
	)

	_, err := guard.Invoke(context.Background(), GuardedCall{ProcessorID: "fis"})
	if !IsErrorCode(err, ErrorCodeUnreachable) {
		t.Fatalf("expected %s despite record failure, got %v", ErrorCodeUnreachable, err)
	}
}

func TestTimeoutGuardLateResponseDiscarded(t *testing.T) {
	store := &recordingTimeoutStore{}
	released := make(chan struct{})
	guard := NewTimeoutGuard(
		InvokerFunc(func(ctx context.Context, req InvokeRequest) (InvokeResponse, error) {
			<-released
			return InvokeResponse{Body: []byte(`{"late":true}`)}, nil
		}),
		TimeoutConfig{DefaultMS: 20},
		store,
		nil,
		nil,
	)

	_, err := guard.Invoke(context.Background(), GuardedCall{ProcessorID: "kushki", TransactionReference: "ref-late"})
	close(released)
	if !IsErrorCode(err, ErrorCodeUnreachable) {
		t.Fatalf("expected %s, got %v", ErrorCodeUnreachable, err)
	}
	if got := store.count(); got != 1 {
		t.Fatalf("expected one timeout record, got %d", got)
	}
}

func TestTimeoutGuardParentCancellation(t *testing.T) {
	store := &recordingTimeoutStore{}
	guard := NewTimeoutGuard(
		InvokerFunc(func(ctx context.Context, req InvokeRequest) (InvokeResponse, error) {
			<-ctx.Done()
			return InvokeResponse{}, ctx.Err()
		}),
		TimeoutConfig{DefaultMS: 60_000},
		store,
		nil,
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := guard.Invoke(ctx, GuardedCall{ProcessorID: "kushki"})
	if !IsErrorCode(err, ErrorCodeUnreachable) {
		t.Fatalf("expected %s, got %v", ErrorCodeUnreachable, err)
	}
}

func TestTimeoutConfigBudget(t *testing.T) {
	cfg := TimeoutConfig{
		DefaultMS:   25_000,
		ProcessorMS: map[string]int{"fis": 10_000},
	}
	if got := cfg.Budget("fis"); got != 10*time.Second {
		t.Fatalf("expected processor override, got %v", got)
	}
	if got := cfg.Budget("kushki"); got != 25*time.Second {
		t.Fatalf("expected default budget, got %v", got)
	}
}
