package kushki

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-acquiring/core"
	"github.com/goliatone/go-acquiring/providers"
)

func newTestProvider(t *testing.T, respond func(req core.InvokeRequest) (core.InvokeResponse, error)) (*Provider, *[]core.InvokeRequest) {
	t.Helper()
	requests := &[]core.InvokeRequest{}
	invoker := core.InvokerFunc(func(_ context.Context, req core.InvokeRequest) (core.InvokeResponse, error) {
		*requests = append(*requests, req)
		return respond(req)
	})
	guard := core.NewTimeoutGuard(invoker, core.TimeoutConfig{DefaultMS: 5000}, nil, nil, nil)
	deps := providers.Dependencies{Guard: guard, Config: core.DefaultConfig()}
	return New(deps), requests
}

func respondJSON(t *testing.T, body any) func(core.InvokeRequest) (core.InvokeResponse, error) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return func(core.InvokeRequest) (core.InvokeResponse, error) {
		return core.InvokeResponse{Body: raw}, nil
	}
}

func chargeInput() core.ChargeInput {
	return core.ChargeInput{
		Token: core.TokenRecord{
			ID:                   "tok-1",
			TransactionReference: "ref-1",
			Bin:                  "41111111",
			LastFourDigits:       "4242",
			CardBrand:            "visa",
			CardHolderName:       "JANE ROE",
		},
		Merchant:  core.MerchantRecord{PublicID: "merchant-1", MerchantName: "Store One", Country: "Ecuador"},
		Processor: core.ProcessorConfig{ProcessorName: "Kushki Acquirer Processor", AcquirerBank: "Banco X"},
		Event:     core.ChargeEvent{Amount: core.Amount{Currency: "USD", SubtotalIVA: 100, IVA: 12}},
		Routing:   core.RoutingDecision{ProcessorID: ID},
	}
}

func TestChargeApproval(t *testing.T) {
	provider, requests := newTestProvider(t, respondJSON(t, map[string]any{
		"response_code":   "000",
		"response_text":   "Transaccion aprobada",
		"approved_amount": 112,
		"ticket_number":   "182000000000000001",
		"transaction_id":  "trx-1",
		"approval_code":   "A1B2C3",
	}))

	result, err := provider.Charge(context.Background(), chargeInput())
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	if result.ResponseCode != "000" || result.TicketNumber != "182000000000000001" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.TransactionReference != "ref-1" {
		t.Fatalf("expected reference propagation, got %q", result.TransactionReference)
	}
	if result.Details.BinCard != "411111" {
		t.Fatalf("expected six-digit bin, got %q", result.Details.BinCard)
	}
	if result.Details.CardType != "VISA" {
		t.Fatalf("expected uppercased brand, got %q", result.Details.CardType)
	}
	if result.RawResponse["approval_code"] != "A1B2C3" {
		t.Fatalf("raw snapshot missing, got %+v", result.RawResponse)
	}

	if len(*requests) != 1 {
		t.Fatalf("expected one downstream call, got %d", len(*requests))
	}
	endpoint := (*requests)[0].Endpoint
	if endpoint != "usrv-card-kushki-charge-primary" {
		t.Fatalf("unexpected endpoint %q", endpoint)
	}
}

func TestChargeDeclinedMapsToDeclinedCode(t *testing.T) {
	provider, _ := newTestProvider(t, respondJSON(t, map[string]any{
		"response_code": "051",
		"response_text": "Insufficient funds",
	}))

	_, err := provider.Charge(context.Background(), chargeInput())
	if !core.IsErrorCode(err, core.ErrorCodeDeclined) {
		t.Fatalf("expected %s, got %v", core.ErrorCodeDeclined, err)
	}
	var rich *goerrors.Error
	if !errors.As(err, &rich) {
		t.Fatalf("expected rich error, got %v", err)
	}
	if rich.Metadata["processor_code"] != "051" {
		t.Fatalf("expected native code in metadata, got %+v", rich.Metadata)
	}
}

func TestChargeRestrictedSetsFlag(t *testing.T) {
	provider, _ := newTestProvider(t, respondJSON(t, map[string]any{
		"response_code": "036",
		"response_text": "Restricted card",
	}))

	_, err := provider.Charge(context.Background(), chargeInput())
	if !core.IsErrorCode(err, core.ErrorCodeRestricted) {
		t.Fatalf("expected %s, got %v", core.ErrorCodeRestricted, err)
	}
	var rich *goerrors.Error
	if !errors.As(err, &rich) {
		t.Fatalf("expected rich error, got %v", err)
	}
	if rich.Metadata["restricted"] != true {
		t.Fatalf("expected restricted flag, got %+v", rich.Metadata)
	}
}

func TestChargeSubsequentUsesDedicatedOperation(t *testing.T) {
	provider, requests := newTestProvider(t, respondJSON(t, map[string]any{
		"response_code": "000",
	}))

	in := chargeInput()
	in.TransactionType = core.TransactionTypeCOFSubsequent
	in.InitialTransaction = &core.Transaction{
		TransactionReference: "ref-initial",
		ApprovalCode:         "INIT01",
	}
	if _, err := provider.Charge(context.Background(), in); err != nil {
		t.Fatalf("charge: %v", err)
	}

	endpoint := (*requests)[0].Endpoint
	if endpoint != "usrv-card-kushki-cof-subsequent-primary" {
		t.Fatalf("unexpected endpoint %q", endpoint)
	}
	body, ok := (*requests)[0].Body.(chargeRequest)
	if !ok {
		t.Fatalf("unexpected body type %T", (*requests)[0].Body)
	}
	if body.InitialReference != "ref-initial" || body.InitialApprovalCode != "INIT01" {
		t.Fatalf("initial transaction linkage missing, got %+v", body)
	}
}

func TestChargeZeroAmountBecomesCardValidation(t *testing.T) {
	provider, requests := newTestProvider(t, respondJSON(t, map[string]any{
		"response_code": "000",
	}))

	in := chargeInput()
	in.Event.Amount = core.Amount{Currency: "USD"}
	if _, err := provider.Charge(context.Background(), in); err != nil {
		t.Fatalf("charge: %v", err)
	}

	body := (*requests)[0].Body.(chargeRequest)
	if !body.IsCardValidation {
		t.Fatal("zero-amount charge should carry the card-validation flag")
	}
	if body.TransactionType != string(core.TransactionTypeCardValidation) {
		t.Fatalf("unexpected transaction type %q", body.TransactionType)
	}
}

func TestChargeBusinessPartnerRequiresFacilitator(t *testing.T) {
	provider, _ := newTestProvider(t, respondJSON(t, map[string]any{
		"response_code": "000",
	}))

	in := chargeInput()
	in.Processor.Jurisdiction = core.JurisdictionBusinessPartner
	in.Merchant.SoftDescriptor = "STORE*ONE"
	_, err := provider.Charge(context.Background(), in)
	if !core.IsErrorCode(err, core.ErrorCodeProcessorConfig) {
		t.Fatalf("expected %s without a facilitator table, got %v", core.ErrorCodeProcessorConfig, err)
	}
}

func TestTokenizeReturnsToken(t *testing.T) {
	provider, _ := newTestProvider(t, respondJSON(t, map[string]any{
		"response_code": "000",
		"response_text": "ok",
		"token":         "tok-new",
	}))

	result, err := provider.Tokenize(context.Background(), core.TokenizeInput{
		CardNumber:     "4111111111111111",
		CardHolderName: "JANE ROE",
		ExpiryMonth:    "09",
		ExpiryYear:     "30",
		Merchant:       core.MerchantRecord{PublicID: "merchant-1", MerchantName: "Store One"},
	})
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if result.TransactionID != "tok-new" {
		t.Fatalf("expected token in transaction id, got %q", result.TransactionID)
	}
	if result.Details.BinCard != "411111" {
		t.Fatalf("expected bin summary, got %q", result.Details.BinCard)
	}
}

func TestReAuthorizeRequiresOriginal(t *testing.T) {
	provider, requests := newTestProvider(t, respondJSON(t, map[string]any{
		"response_code": "000",
	}))

	_, err := provider.ReAuthorize(context.Background(), core.ReAuthInput{})
	if !core.IsErrorCode(err, core.ErrorCodeValidation) {
		t.Fatalf("expected %s, got %v", core.ErrorCodeValidation, err)
	}
	if len(*requests) != 0 {
		t.Fatalf("validation failures must not reach the wire, got %d calls", len(*requests))
	}
}

func TestMalformedResponseIsProcessorFault(t *testing.T) {
	provider, _ := newTestProvider(t, func(core.InvokeRequest) (core.InvokeResponse, error) {
		return core.InvokeResponse{Body: []byte("<html>bad gateway</html>")}, nil
	})

	_, err := provider.Charge(context.Background(), chargeInput())
	if !core.IsErrorCode(err, core.ErrorCodeProcessorFault) {
		t.Fatalf("expected %s, got %v", core.ErrorCodeProcessorFault, err)
	}
}
