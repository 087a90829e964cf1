package transbank

import (
	"context"

	"github.com/goliatone/go-acquiring/core"
	"github.com/goliatone/go-acquiring/providers"
)

const ID = "transbank"

const successCode = "0"

const (
	opTokenize = "tokenize"
	opCharge   = "charge"
)

func errorTable() core.ProcessorErrorTable {
	return core.ProcessorErrorTable{
		Declined:   core.NewNativeCodeSet("-1", "-2", "-4", "-5", "-96"),
		Restricted: core.NewNativeCodeSet("-8", "-97"),
	}
}

// Provider is the Transbank integration. It exposes card tokenization and
// one-shot charges; every other operation is unsupported.
type Provider struct {
	providers.Base
}

func New(deps providers.Dependencies) *Provider {
	return &Provider{Base: providers.NewBase(ID, errorTable(), deps)}
}

type tokenizeRequest struct {
	CardNumber     string  `json:"card_number"`
	CardHolderName string  `json:"card_holder_name"`
	ExpiryMonth    string  `json:"expiry_month"`
	ExpiryYear     string  `json:"expiry_year"`
	CVV            string  `json:"cvv,omitempty"`
	Currency       string  `json:"currency"`
	TotalAmount    float64 `json:"total_amount"`
	MerchantID     string  `json:"merchant_id"`
}

type tokenizeResponse struct {
	ResponseCode string `json:"response_code"`
	ResponseText string `json:"response_text"`
	Token        string `json:"token"`
}

type chargeRequest struct {
	Token                string                  `json:"token"`
	SessionID            string                  `json:"session_id"`
	Amount               float64                 `json:"amount"`
	Currency             string                  `json:"currency"`
	TransactionReference string                  `json:"transaction_reference"`
	CommerceCode         string                  `json:"commerce_code"`
	Deferred             *providers.WireDeferred `json:"deferred,omitempty"`
}

type wireResponse struct {
	ResponseCode      string  `json:"response_code"`
	ResponseText      string  `json:"response_text"`
	AuthorizedAmount  float64 `json:"authorized_amount"`
	AuthorizationCode string  `json:"authorization_code"`
	BuyOrder          string  `json:"buy_order"`
}

func (p *Provider) Tokenize(ctx context.Context, in core.TokenizeInput) (*core.CanonicalAuthorizationResult, error) {
	request := tokenizeRequest{
		CardNumber:     in.CardNumber,
		CardHolderName: in.CardHolderName,
		ExpiryMonth:    in.ExpiryMonth,
		ExpiryYear:     in.ExpiryYear,
		CVV:            in.CVV,
		Currency:       in.Currency,
		TotalAmount:    in.TotalAmount,
		MerchantID:     in.Merchant.PublicID,
	}

	var response tokenizeResponse
	if err := p.Call(ctx, opTokenize, "", request, &response); err != nil {
		return nil, err
	}
	if response.ResponseCode != successCode {
		return nil, p.Classify(response.ResponseCode, response.ResponseText, providers.Snapshot(response), nil)
	}
	return &core.CanonicalAuthorizationResult{
		ResponseCode:  response.ResponseCode,
		ResponseText:  response.ResponseText,
		TransactionID: response.Token,
		Details: core.TransactionDetails{
			BinCard:        core.SummarizeBin(in.CardNumber),
			CardHolderName: in.CardHolderName,
			MerchantName:   in.Merchant.MerchantName,
			ProcessorName:  ID,
		},
		RawResponse: providers.Snapshot(response),
	}, nil
}

func (p *Provider) Charge(ctx context.Context, in core.ChargeInput) (*core.CanonicalAuthorizationResult, error) {
	request := chargeRequest{
		Token:                in.Token.ID,
		SessionID:            in.Token.SecureID,
		Amount:               in.Event.Amount.Total(),
		Currency:             in.Event.Amount.Currency,
		TransactionReference: in.Token.TransactionReference,
		CommerceCode:         in.Processor.UniqueCode,
		Deferred:             providers.BuildDeferred(in.Token, in.Event),
	}

	var response wireResponse
	if err := p.Call(ctx, opCharge, in.Token.TransactionReference, request, &response); err != nil {
		return nil, err
	}
	if response.ResponseCode != successCode {
		return nil, p.Classify(response.ResponseCode, response.ResponseText, providers.Snapshot(response), nil)
	}
	return &core.CanonicalAuthorizationResult{
		ApprovedTransactionAmount: response.AuthorizedAmount,
		ResponseCode:              response.ResponseCode,
		ResponseText:              response.ResponseText,
		TicketNumber:              response.BuyOrder,
		TransactionID:             response.BuyOrder,
		TransactionReference:      in.Token.TransactionReference,
		Details: core.TransactionDetails{
			ApprovalCode:      response.AuthorizationCode,
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
