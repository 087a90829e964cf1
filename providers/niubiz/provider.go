package niubiz

import (
	"context"

	"github.com/goliatone/go-acquiring/core"
	"github.com/goliatone/go-acquiring/providers"
)

const ID = "niubiz"

const successCode = "000"

const (
	opCharge           = "charge"
	opPreauthorization = "preauthorization"
	opCapture          = "capture"
)

func errorTable() core.ProcessorErrorTable {
	return core.ProcessorErrorTable{
		Declined:   core.NewNativeCodeSet("101", "102", "104", "106", "116", "129", "180"),
		Restricted: core.NewNativeCodeSet("107", "109", "126"),
	}
}

// Provider is the Niubiz integration. It supports the preauthorize and
// capture pair on top of plain charges.
type Provider struct {
	providers.Base
}

func New(deps providers.Dependencies) *Provider {
	return &Provider{Base: providers.NewBase(ID, errorTable(), deps)}
}

type chargeRequest struct {
	Token                string                 `json:"token"`
	Amount               float64                `json:"amount"`
	Currency             string                 `json:"currency"`
	TransactionReference string                 `json:"transaction_reference"`
	MerchantID           string                 `json:"merchant_id"`
	TerminalID           string                 `json:"terminal_id"`
	ThreeDS              *providers.WireThreeDS `json:"three_ds,omitempty"`
	Preauthorization     bool                   `json:"preauthorization"`
}

type captureRequest struct {
	PurchaseNumber       string   `json:"purchase_number"`
	TransactionReference string   `json:"transaction_reference"`
	Amount               *float64 `json:"amount,omitempty"`
	Currency             string   `json:"currency,omitempty"`
	MerchantID           string   `json:"merchant_id"`
}

type wireResponse struct {
	ActionCode        string  `json:"action_code"`
	ActionDescription string  `json:"action_description"`
	Amount            float64 `json:"amount"`
	PurchaseNumber    string  `json:"purchase_number"`
	TransactionID     string  `json:"transaction_id"`
	AuthorizationCode string  `json:"authorization_code"`
}

func (p *Provider) Charge(ctx context.Context, in core.ChargeInput) (*core.CanonicalAuthorizationResult, error) {
	return p.authorize(ctx, opCharge, in, false)
}

func (p *Provider) PreAuthorize(ctx context.Context, in core.PreAuthInput) (*core.CanonicalAuthorizationResult, error) {
	charge := core.ChargeInput{
		Token:           in.Token,
		Merchant:        in.Merchant,
		Processor:       in.Processor,
		Event:           in.Event,
		Authorizer:      in.Authorizer,
		Routing:         in.Routing,
		TransactionType: core.TransactionTypePreauthorization,
	}
	return p.authorize(ctx, opPreauthorization, charge, true)
}

func (p *Provider) Capture(ctx context.Context, in core.CaptureInput) (*core.CanonicalAuthorizationResult, error) {
	if in.Original == nil {
		return nil, core.ValidationError("capture requires the original preauthorization", nil)
	}
	request := captureRequest{
		PurchaseNumber:       in.Event.TicketNumber,
		TransactionReference: in.Original.TransactionReference,
		MerchantID:           in.Processor.PublicID,
	}
	if in.Event.Amount != nil {
		total := in.Event.Amount.Total()
		request.Amount = &total
		request.Currency = in.Event.Amount.Currency
	}

	var response wireResponse
	if err := p.Call(ctx, opCapture, in.Original.TransactionReference, request, &response); err != nil {
		return nil, err
	}
	if response.ActionCode != successCode {
		return nil, p.Classify(response.ActionCode, response.ActionDescription, providers.Snapshot(response), nil)
	}
	return &core.CanonicalAuthorizationResult{
		ApprovedTransactionAmount: response.Amount,
		ResponseCode:              response.ActionCode,
		ResponseText:              response.ActionDescription,
		TicketNumber:              response.PurchaseNumber,
		TransactionID:             response.TransactionID,
		TransactionReference:      in.Original.TransactionReference,
		Details: core.TransactionDetails{
			ApprovalCode:      response.AuthorizationCode,
			BinCard:           core.SummarizeBin(in.Original.BinCard),
			CardHolderName:    in.Original.CardHolderName,
			CardType:          in.Original.CardType,
			LastFourDigits:    in.Original.LastFourDigits,
			MerchantName:      in.Merchant.MerchantName,
			ProcessorBankName: in.Processor.AcquirerBank,
			ProcessorName:     ID,
		},
		RawResponse: providers.Snapshot(response),
	}, nil
}

func (p *Provider) Tokenize(ctx context.Context, in core.TokenizeInput) (*core.CanonicalAuthorizationResult, error) {
	return p.Unsupported("tokenize")
}

func (p *Provider) ReAuthorize(ctx context.Context, in core.ReAuthInput) (*core.CanonicalAuthorizationResult, error) {
	return p.Unsupported("reauthorization")
}

func (p *Provider) ValidateAccount(ctx context.Context, in core.AccountValidationInput) (*core.CanonicalAuthorizationResult, error) {
	return p.Unsupported("account-validation")
}

func (p *Provider) authorize(ctx context.Context, operation string, in core.ChargeInput, preauth bool) (*core.CanonicalAuthorizationResult, error) {
	request := chargeRequest{
		Token:                in.Token.ID,
		Amount:               in.Event.Amount.Total(),
		Currency:             in.Event.Amount.Currency,
		TransactionReference: in.Token.TransactionReference,
		MerchantID:           in.Processor.PublicID,
		TerminalID:           in.Processor.TerminalID,
		ThreeDS:              providers.BuildThreeDS(in.Event.ThreeDS),
		Preauthorization:     preauth,
	}

	var response wireResponse
	if err := p.Call(ctx, operation, in.Token.TransactionReference, request, &response); err != nil {
		return nil, err
	}
	if response.ActionCode != successCode {
		return nil, p.Classify(response.ActionCode, response.ActionDescription, providers.Snapshot(response), nil)
	}
	return &core.CanonicalAuthorizationResult{
		ApprovedTransactionAmount: response.Amount,
		ResponseCode:              response.ActionCode,
		ResponseText:              response.ActionDescription,
		TicketNumber:              response.PurchaseNumber,
		TransactionID:             response.TransactionID,
		TransactionReference:      in.Token.TransactionReference,
		ThreeDSIndicator:          core.ResolveECI(in.Event.ThreeDS),
		Details: core.TransactionDetails{
			ApprovalCode:      response.AuthorizationCode,
			BinCard:           core.SummarizeBin(in.Token.Bin),
			CardHolderName:    in.Token.CardHolderName,
			CardType:          in.Token.CardBrand,
			LastFourDigits:    in.Token.LastFourDigits,
			MerchantName:      in.Merchant.MerchantName,
			ProcessorBankName: in.Processor.AcquirerBank,
			ProcessorName:     ID,
		},
		RawResponse: providers.Snapshot(response),
	}, nil
}
