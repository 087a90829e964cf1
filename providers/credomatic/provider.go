package credomatic

import (
	"context"

	"github.com/goliatone/go-acquiring/core"
	"github.com/goliatone/go-acquiring/providers"
)

const ID = "credomatic"

const successCode = "00"

const opCharge = "charge"

func errorTable() core.ProcessorErrorTable {
	return core.ProcessorErrorTable{
		Declined:   core.NewNativeCodeSet("05", "12", "14", "51", "54", "61", "62"),
		Restricted: core.NewNativeCodeSet("04", "41", "43"),
	}
}

// Provider is the Credomatic integration, a charge-only processor.
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
	TerminalID           string                 `json:"terminal_id"`
	MerchantID           string                 `json:"merchant_id"`
	ThreeDS              *providers.WireThreeDS `json:"three_ds,omitempty"`
}

type wireResponse struct {
	ResponseCode   string  `json:"response_code"`
	ResponseText   string  `json:"response_text"`
	ApprovedAmount float64 `json:"approved_amount"`
	ReferenceNum   string  `json:"reference_number"`
	AuthCode       string  `json:"auth_code"`
}

func (p *Provider) Charge(ctx context.Context, in core.ChargeInput) (*core.CanonicalAuthorizationResult, error) {
	request := chargeRequest{
		Token:                in.Token.ID,
		Amount:               in.Event.Amount.Total(),
		Currency:             in.Event.Amount.Currency,
		TransactionReference: in.Token.TransactionReference,
		TerminalID:           in.Processor.TerminalID,
		MerchantID:           in.Merchant.PublicID,
		ThreeDS:              providers.BuildThreeDS(in.Event.ThreeDS),
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
		TicketNumber:              response.ReferenceNum,
		TransactionID:             response.ReferenceNum,
		TransactionReference:      in.Token.TransactionReference,
		ThreeDSIndicator:          core.ResolveECI(in.Event.ThreeDS),
		Details: core.TransactionDetails{
			ApprovalCode:      response.AuthCode,
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
