package core

import (
	"context"
	"errors"
	"testing"
)

type stubTransactionStore struct {
	byReference map[string]*Transaction
	err         error
	calls       int
}

func (s *stubTransactionStore) GetByReference(ctx context.Context, reference string) (*Transaction, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.byReference[reference], nil
}

func TestResolverCardValidationWinsOverSubscription(t *testing.T) {
	resolver := NewChargeResolver(&stubTransactionStore{}, nil)

	out, err := resolver.Resolve(context.Background(), ChargeInput{
		Event: ChargeEvent{
			IsCardValidation: true,
			IsSubscription:   true,
			ProcessorToken:   "ptoken-1",
		},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.TransactionType != TransactionTypeCardValidation {
		t.Fatalf("expected %s, got %s", TransactionTypeCardValidation, out.TransactionType)
	}
}

func TestResolverOnDemandWithCVVStripsSubscriptionLinkage(t *testing.T) {
	store := &stubTransactionStore{}
	resolver := NewChargeResolver(store, nil)

	out, err := resolver.Resolve(context.Background(), ChargeInput{
		Event: ChargeEvent{
			SubscriptionTrigger:        TriggerOnDemand,
			CVV:                        "123",
			IsSubscription:             true,
			SubscriptionID:             "sub-1",
			InitialRecurrenceReference: "ref-0",
		},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.TransactionType != TransactionTypeCharge {
		t.Fatalf("expected %s, got %s", TransactionTypeCharge, out.TransactionType)
	}
	if out.Event.IsSubscription {
		t.Fatal("subscription flag should be cleared")
	}
	if out.Event.SubscriptionID != "" || out.Event.InitialRecurrenceReference != "" {
		t.Fatalf("subscription linkage should be stripped, got %q %q",
			out.Event.SubscriptionID, out.Event.InitialRecurrenceReference)
	}
	if store.calls != 0 {
		t.Fatalf("on-demand path must not hit the store, got %d calls", store.calls)
	}
}

func TestResolverRoutesCOFSubsequent(t *testing.T) {
	initial := &Transaction{
		TransactionReference: "ref-initial",
		IsInitialCOF:         true,
		Amount:               Amount{Currency: "USD", SubtotalIVA: 12.5},
	}
	store := &stubTransactionStore{byReference: map[string]*Transaction{"ref-initial": initial}}
	resolver := NewChargeResolver(store, nil)

	out, err := resolver.Resolve(context.Background(), ChargeInput{
		Event: ChargeEvent{
			IsSubscription: true,
			ProcessorToken: "ref-initial",
		},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.TransactionType != TransactionTypeCOFSubsequent {
		t.Fatalf("expected %s, got %s", TransactionTypeCOFSubsequent, out.TransactionType)
	}
	if out.InitialTransaction == nil || out.InitialTransaction.TransactionReference != "ref-initial" {
		t.Fatalf("expected initial transaction attached, got %+v", out.InitialTransaction)
	}
	if out.Event.Amount.Total() != 12.5 {
		t.Fatalf("zero amount should default from the original, got %v", out.Event.Amount.Total())
	}
}

func TestResolverExplicitInitialReferenceWinsOverProcessorToken(t *testing.T) {
	initial := &Transaction{TransactionReference: "ref-explicit", IsInitialCOF: true, Amount: Amount{SubtotalIVA: 3}}
	store := &stubTransactionStore{byReference: map[string]*Transaction{"ref-explicit": initial}}
	resolver := NewChargeResolver(store, nil)

	out, err := resolver.Resolve(context.Background(), ChargeInput{
		Event: ChargeEvent{
			IsSubscription:             true,
			ProcessorToken:             "ref-other",
			InitialRecurrenceReference: "ref-explicit",
		},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.TransactionType != TransactionTypeCOFSubsequent {
		t.Fatalf("expected %s, got %s", TransactionTypeCOFSubsequent, out.TransactionType)
	}
}

func TestResolverFallsBackToChargeWhenLookupMisses(t *testing.T) {
	store := &stubTransactionStore{byReference: map[string]*Transaction{}}
	resolver := NewChargeResolver(store, nil)

	out, err := resolver.Resolve(context.Background(), ChargeInput{
		Event: ChargeEvent{IsSubscription: true, ProcessorToken: "ref-unknown"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.TransactionType != TransactionTypeCharge {
		t.Fatalf("expected fallback to %s, got %s", TransactionTypeCharge, out.TransactionType)
	}
	if out.InitialTransaction != nil {
		t.Fatal("no initial transaction should be attached on fallback")
	}
}

func TestResolverFallsBackToChargeWhenStoreFails(t *testing.T) {
	store := &stubTransactionStore{err: errors.New("store down")}
	resolver := NewChargeResolver(store, nil)

	out, err := resolver.Resolve(context.Background(), ChargeInput{
		Event: ChargeEvent{IsSubscription: true, ProcessorToken: "ref-1"},
	})
	if err != nil {
		t.Fatalf("resolve should not propagate store errors: %v", err)
	}
	if out.TransactionType != TransactionTypeCharge {
		t.Fatalf("expected %s, got %s", TransactionTypeCharge, out.TransactionType)
	}
}

func TestResolverNonInitialReferenceStaysCharge(t *testing.T) {
	notInitial := &Transaction{TransactionReference: "ref-1", IsInitialCOF: false}
	store := &stubTransactionStore{byReference: map[string]*Transaction{"ref-1": notInitial}}
	resolver := NewChargeResolver(store, nil)

	out, err := resolver.Resolve(context.Background(), ChargeInput{
		Event: ChargeEvent{IsSubscription: true, ProcessorToken: "ref-1"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.TransactionType != TransactionTypeCharge {
		t.Fatalf("expected %s, got %s", TransactionTypeCharge, out.TransactionType)
	}
}
