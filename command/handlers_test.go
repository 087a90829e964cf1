package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-acquiring/core"
)

type stubAuthorizingService struct {
	chargeFn  func(ctx context.Context, in core.ChargeInput) (*core.CanonicalAuthorizationResult, error)
	captureFn func(ctx context.Context, in core.CaptureInput) (*core.CanonicalAuthorizationResult, error)
}

func (s stubAuthorizingService) Tokenize(_ context.Context, _ core.TokenizeInput) (*core.CanonicalAuthorizationResult, error) {
	return &core.CanonicalAuthorizationResult{ResponseCode: "000"}, nil
}

func (s stubAuthorizingService) Charge(ctx context.Context, in core.ChargeInput) (*core.CanonicalAuthorizationResult, error) {
	if s.chargeFn != nil {
		return s.chargeFn(ctx, in)
	}
	return &core.CanonicalAuthorizationResult{ResponseCode: "000"}, nil
}

func (s stubAuthorizingService) PreAuthorize(_ context.Context, _ core.PreAuthInput) (*core.CanonicalAuthorizationResult, error) {
	return &core.CanonicalAuthorizationResult{ResponseCode: "000"}, nil
}

func (s stubAuthorizingService) ReAuthorize(_ context.Context, _ core.ReAuthInput) (*core.CanonicalAuthorizationResult, error) {
	return &core.CanonicalAuthorizationResult{ResponseCode: "000"}, nil
}

func (s stubAuthorizingService) Capture(ctx context.Context, in core.CaptureInput) (*core.CanonicalAuthorizationResult, error) {
	if s.captureFn != nil {
		return s.captureFn(ctx, in)
	}
	return &core.CanonicalAuthorizationResult{ResponseCode: "000"}, nil
}

func (s stubAuthorizingService) ValidateAccount(_ context.Context, _ core.AccountValidationInput) (*core.CanonicalAuthorizationResult, error) {
	return &core.CanonicalAuthorizationResult{ResponseCode: "000"}, nil
}

func TestChargeCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := &core.CanonicalAuthorizationResult{
		ResponseCode: "000",
		TicketNumber: "182000000000000001",
	}
	called := false

	svc := stubAuthorizingService{
		chargeFn: func(_ context.Context, in core.ChargeInput) (*core.CanonicalAuthorizationResult, error) {
			called = true
			if in.Token.ID != "tok-1" {
				t.Fatalf("expected token tok-1, got %q", in.Token.ID)
			}
			return expected, nil
		},
	}

	cmd := NewChargeCommand(svc)
	collector := gocmd.NewResult[*core.CanonicalAuthorizationResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, ChargeMessage{Input: core.ChargeInput{
		Token:    core.TokenRecord{ID: "tok-1", TransactionReference: "ref-1"},
		Merchant: core.MerchantRecord{PublicID: "merchant-1"},
		Routing:  core.RoutingDecision{ProcessorID: "kushki"},
	}})
	if err != nil {
		t.Fatalf("execute charge: %v", err)
	}
	if !called {
		t.Fatal("expected charge service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatal("expected result to be stored")
	}
	if result.TicketNumber != expected.TicketNumber {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestChargeCommand_ServiceErrorPropagates(t *testing.T) {
	cause := errors.New("downstream declined")
	svc := stubAuthorizingService{
		chargeFn: func(_ context.Context, _ core.ChargeInput) (*core.CanonicalAuthorizationResult, error) {
			return nil, cause
		},
	}
	cmd := NewChargeCommand(svc)
	if err := cmd.Execute(context.Background(), ChargeMessage{}); !errors.Is(err, cause) {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestCaptureCommand_MissingServiceFails(t *testing.T) {
	var cmd *CaptureCommand
	err := cmd.Execute(context.Background(), CaptureMessage{})
	if err == nil {
		t.Fatal("expected dependency error")
	}
}

func TestMessageValidation(t *testing.T) {
	routing := core.RoutingDecision{ProcessorID: "kushki"}
	original := &core.Transaction{TransactionReference: "ref-orig"}

	cases := []struct {
		name    string
		msg     interface{ Validate() error }
		wantErr string
	}{
		{"tokenize missing card", TokenizeMessage{Input: core.TokenizeInput{
			Merchant: core.MerchantRecord{PublicID: "m-1"}, Routing: routing,
		}}, "card number"},
		{"charge missing token", ChargeMessage{Input: core.ChargeInput{
			Merchant: core.MerchantRecord{PublicID: "m-1"}, Routing: routing,
		}}, "token"},
		{"charge missing routing", ChargeMessage{Input: core.ChargeInput{
			Token:    core.TokenRecord{ID: "tok-1", TransactionReference: "ref-1"},
			Merchant: core.MerchantRecord{PublicID: "m-1"},
		}}, "processor id"},
		{"reauthorize missing original", ReAuthorizeMessage{Input: core.ReAuthInput{Routing: routing}}, "original"},
		{"capture missing original", CaptureMessage{Input: core.CaptureInput{Routing: routing}}, "original"},
		{"validate account missing merchant", ValidateAccountMessage{Input: core.AccountValidationInput{
			Token: core.TokenRecord{ID: "tok-1"}, Routing: routing,
		}}, "merchant"},
	}
	for _, tc := range cases {
		err := tc.msg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: expected error mentioning %q, got %v", tc.name, tc.wantErr, err)
		}
	}

	valid := CaptureMessage{Input: core.CaptureInput{Original: original, Routing: routing}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid capture message: %v", err)
	}
}

func TestMessageTypes(t *testing.T) {
	if got := (ChargeMessage{}).Type(); got != TypeCharge {
		t.Fatalf("unexpected type %q", got)
	}
	if got := (ValidateAccountMessage{}).Type(); got != TypeValidateAccount {
		t.Fatalf("unexpected type %q", got)
	}
}
