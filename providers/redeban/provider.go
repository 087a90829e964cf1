package redeban

import (
	"context"

	"github.com/goliatone/go-acquiring/core"
	"github.com/goliatone/go-acquiring/providers"
)

const ID = "redeban"

const successCode = "00"

const opCharge = "charge"

func errorTable() core.ProcessorErrorTable {
	return core.ProcessorErrorTable{
		Declined:   core.NewNativeCodeSet("05", "51", "54", "55", "61", "65"),
		Restricted: core.NewNativeCodeSet("36", "41", "43", "59"),
	}
}

// Provider is the Redeban integration, a charge-only processor.
type Provider struct {
	providers.Base
}

func New(deps providers.Dependencies) *Provider {
	return &Provider{Base: providers.NewBase(ID, errorTable(), deps)}
}

type chargeRequest struct {
	Token                string                  `json:"token"`
	Amount               float64                 `json:"amount"`
	Currency             string                  `json:"currency"`
	TransactionReference string                  `json:"transaction_reference"`
	UniqueCode           string                  `json:"unique_code"`
	TerminalID           string                  `json:"terminal_id"`
	Deferred             *providers.WireDeferred `json:"deferred,omitempty"`
	SubMerchant          *core.SubMerchantData   `json:"sub_merchant,omitempty"`
}

type wireResponse struct {
	ResponseCode   string  `json:"response_code"`
	ResponseText   string  `json:"response_text"`
	ApprovedAmount float64 `json:"approved_amount"`
	TicketNumber   string  `json:"ticket_number"`
	ApprovalCode   string  `json:"approval_code"`
}

func (p *Provider) Charge(ctx context.Context, in core.ChargeInput) (*core.CanonicalAuthorizationResult, error) {
	request := chargeRequest{
		Token:                in.Token.ID,
		Amount:               in.Event.Amount.Total(),
		Currency:             in.Event.Amount.Currency,
		TransactionReference: in.Token.TransactionReference,
		UniqueCode:           in.Processor.UniqueCode,
		TerminalID:           in.Processor.TerminalID,
		Deferred:             providers.BuildDeferred(in.Token, in.Event),
	}

	if core.RequiresSubMerchant(in.Processor) {
		sub, err := core.BuildSubMerchant(in.Merchant, in.Processor, in.Token.CardBrand, p.Config().Facilitators)
		if err != nil {
			return nil, err
		}
		request.SubMerchant = &sub
	}

	var response wireResponse
	if err := p.Call(ctx, opCharge, in.Token.TransactionReference, request, &response); err != nil {
		return nil, err
	}
	if response.ResponseCode != successCode {
		return nil, p.Classify(response.ResponseCode, response.ResponseText, providers.Snapshot(response), nil)
	}
	return &core.CanonicalAuthorizationResult{
		ApprovedTransactionAmount: response.ApprovedAmount,
		ResponseCode:              response.ResponseCode,
		ResponseText:              response.ResponseText,
		TicketNumber:              response.TicketNumber,
		TransactionID:             response.TicketNumber,
		TransactionReference:      in.Token.TransactionReference,
		Details: core.TransactionDetails{
			ApprovalCode:      response.ApprovalCode,
			BinCard:           core.SummarizeBin(in.Token.Bin),
			CardHolderName:    in.Token.CardHolderName,
			CardType:          in.Token.CardBrand,
			LastFourDigits:    in.Token.LastFourDigits,
			MerchantName:      in.Merchant.MerchantName,
			ProcessorBankName: in.Processor.AcquirerBank,
			ProcessorName:     ID,
			IsDeferred:        request.Deferred != nil,
		},
		RawResponse: providers.Snapshot(response),
	}, nil
}

func (p *Provider) Tokenize(ctx context.Context, in core.TokenizeInput) (*core.CanonicalAuthorizationResult, error) {
	return p.Unsupported("tokenize")
}

func (p *Provider) PreAuthorize(ctx context.Context, in core.PreAuthInput) (*core.CanonicalAuthorizationResult, error) {
	return p.Unsupported("preauthorization")
}

func (p *Provider) ReAuthorize(ctx context.Context, in core.ReAuthInput) (*core.CanonicalAuthorizationResult, error) {
	return p.Unsupported("reauthorization")
}

func (p *Provider) Capture(ctx context.Context, in core.CaptureInput) (*core.CanonicalAuthorizationResult, error) {
	return p.Unsupported("capture")
}

func (p *Provider) ValidateAccount(ctx context.Context, in core.AccountValidationInput) (*core.CanonicalAuthorizationResult, error) {
	return p.Unsupported("account-validation")
}
