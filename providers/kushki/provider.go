package kushki

import (
	"context"
	"strings"

	"github.com/goliatone/go-acquiring/core"
	"github.com/goliatone/go-acquiring/providers"
)

// ID is the processor identifier of the direct-acquirer integration.
const ID = "kushki"

// successCode is the acquirer approval sentinel.
const successCode = "000"

const (
	opTokenize          = "tokenize"
	opCharge            = "charge"
	opCOFSubsequent     = "cof-subsequent"
	opPreauthorization  = "preauthorization"
	opReauthorization   = "reauthorization"
	opCapture           = "capture"
	opAccountValidation = "account-validation"
)

func errorTable() core.ProcessorErrorTable {
	return core.ProcessorErrorTable{
		Declined: core.NewNativeCodeSet(
			"005", "014", "041", "043", "051", "054", "055", "061", "062", "065",
		),
		Restricted: core.NewNativeCodeSet("036", "059", "078"),
	}
}

// Provider is the direct-acquirer integration. It supports the full
// operation contract, including reauthorization and account validation.
type Provider struct {
	providers.Base
}

func New(deps providers.Dependencies) *Provider {
	return &Provider{Base: providers.NewBase(ID, errorTable(), deps)}
}

type amountBlock struct {
	Currency     string  `json:"currency"`
	SubtotalIVA  float64 `json:"subtotal_iva"`
	SubtotalIVA0 float64 `json:"subtotal_iva0"`
	IVA          float64 `json:"iva"`
	ICE          float64 `json:"ice"`
}

func buildAmount(amount core.Amount) amountBlock {
	return amountBlock{
		Currency:     amount.Currency,
		SubtotalIVA:  amount.SubtotalIVA,
		SubtotalIVA0: amount.SubtotalIVA0,
		IVA:          amount.IVA,
		ICE:          amount.ICE,
	}
}

type chargeRequest struct {
	Token                string                  `json:"token"`
	Amount               amountBlock             `json:"amount"`
	TransactionReference string                  `json:"transaction_reference"`
	TransactionType      string                  `json:"transaction_type"`
	MerchantID           string                  `json:"merchant_id"`
	MerchantName         string                  `json:"merchant_name"`
	TerminalID           string                  `json:"terminal_id,omitempty"`
	UniqueCode           string                  `json:"unique_code,omitempty"`
	Deferred             *providers.WireDeferred `json:"deferred,omitempty"`
	ThreeDS              *providers.WireThreeDS  `json:"three_ds,omitempty"`
	SubMerchant          *core.SubMerchantData   `json:"sub_merchant,omitempty"`
	VaultToken           string                  `json:"vault_token,omitempty"`
	IsSubscription       bool                    `json:"is_subscription"`
	IsCardValidation     bool                    `json:"is_card_validation"`
	InitialReference     string                  `json:"initial_reference,omitempty"`
	InitialApprovalCode  string                  `json:"initial_approval_code,omitempty"`
	CVV2                 string                  `json:"cvv2,omitempty"`
}

type wireResponse struct {
	ResponseCode   string  `json:"response_code"`
	ResponseText   string  `json:"response_text"`
	ApprovedAmount float64 `json:"approved_amount"`
	TicketNumber   string  `json:"ticket_number"`
	TransactionID  string  `json:"transaction_id"`
	ApprovalCode   string  `json:"approval_code"`
}

type tokenizeRequest struct {
	CardNumber     string      `json:"card_number"`
	CardHolderName string      `json:"card_holder_name"`
	ExpiryMonth    string      `json:"expiry_month"`
	ExpiryYear     string      `json:"expiry_year"`
	CVV            string      `json:"cvv,omitempty"`
	MerchantID     string      `json:"merchant_id"`
	Amount         amountBlock `json:"amount"`
}

type tokenizeResponse struct {
	ResponseCode string `json:"response_code"`
	ResponseText string `json:"response_text"`
	Token        string `json:"token"`
}

func (p *Provider) Tokenize(ctx context.Context, in core.TokenizeInput) (*core.CanonicalAuthorizationResult, error) {
	request := tokenizeRequest{
		CardNumber:     in.CardNumber,
		CardHolderName: in.CardHolderName,
		ExpiryMonth:    in.ExpiryMonth,
		ExpiryYear:     in.ExpiryYear,
		CVV:            in.CVV,
		MerchantID:     in.Merchant.PublicID,
		Amount:         amountBlock{Currency: in.Currency, SubtotalIVA: in.TotalAmount},
	}

	var response tokenizeResponse
	if err := p.Call(ctx, opTokenize, "", request, &response); err != nil {
		return nil, err
	}
	if response.ResponseCode != successCode {
		return nil, p.Classify(response.ResponseCode, response.ResponseText, nil, nil)
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
	}, nil
}

func (p *Provider) Charge(ctx context.Context, in core.ChargeInput) (*core.CanonicalAuthorizationResult, error) {
	operation := opCharge
	if in.TransactionType == core.TransactionTypeCOFSubsequent {
		operation = opCOFSubsequent
	}

	request, err := p.buildCharge(in)
	if err != nil {
		return nil, err
	}

	var response wireResponse
	if err := p.Call(ctx, operation, in.Token.TransactionReference, request, &response); err != nil {
		return nil, err
	}
	if response.ResponseCode != successCode {
		return nil, p.Classify(response.ResponseCode, response.ResponseText, rawOf(response), nil)
	}
	return p.result(response, in.Token, in.Merchant, in.Processor, in.Event.ThreeDS, request.Deferred != nil), nil
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
	request, err := p.buildCharge(charge)
	if err != nil {
		return nil, err
	}

	var response wireResponse
	if err := p.Call(ctx, opPreauthorization, in.Token.TransactionReference, request, &response); err != nil {
		return nil, err
	}
	if response.ResponseCode != successCode {
		return nil, p.Classify(response.ResponseCode, response.ResponseText, rawOf(response), nil)
	}
	return p.result(response, in.Token, in.Merchant, in.Processor, in.Event.ThreeDS, request.Deferred != nil), nil
}

type reauthRequest struct {
	Amount               amountBlock `json:"amount"`
	TransactionReference string      `json:"transaction_reference"`
	OriginalTicket       string      `json:"original_ticket"`
	OriginalApprovalCode string      `json:"original_approval_code"`
	MerchantID           string      `json:"merchant_id"`
}

func (p *Provider) ReAuthorize(ctx context.Context, in core.ReAuthInput) (*core.CanonicalAuthorizationResult, error) {
	if in.Original == nil {
		return nil, core.ValidationError("reauthorization requires the original transaction", nil)
	}
	request := reauthRequest{
		Amount:               buildAmount(in.Amount),
		TransactionReference: in.Original.TransactionReference,
		OriginalTicket:       in.Original.TicketNumber,
		OriginalApprovalCode: in.Original.ApprovalCode,
		MerchantID:           in.Merchant.PublicID,
	}

	var response wireResponse
	if err := p.Call(ctx, opReauthorization, in.Original.TransactionReference, request, &response); err != nil {
		return nil, err
	}
	if response.ResponseCode != successCode {
		return nil, p.Classify(response.ResponseCode, response.ResponseText, rawOf(response), nil)
	}
	result := p.resultFromTransaction(response, in.Original, in.Merchant, in.Processor)
	return result, nil
}

type captureRequest struct {
	Amount               *amountBlock `json:"amount,omitempty"`
	TicketNumber         string       `json:"ticket_number"`
	TransactionReference string       `json:"transaction_reference"`
	MerchantID           string       `json:"merchant_id"`
}

func (p *Provider) Capture(ctx context.Context, in core.CaptureInput) (*core.CanonicalAuthorizationResult, error) {
	if in.Original == nil {
		return nil, core.ValidationError("capture requires the original preauthorization", nil)
	}
	request := captureRequest{
		TicketNumber:         in.Event.TicketNumber,
		TransactionReference: in.Original.TransactionReference,
		MerchantID:           in.Merchant.PublicID,
	}
	if in.Event.Amount != nil {
		amount := buildAmount(*in.Event.Amount)
		request.Amount = &amount
	}

	var response wireResponse
	if err := p.Call(ctx, opCapture, in.Original.TransactionReference, request, &response); err != nil {
		return nil, err
	}
	if response.ResponseCode != successCode {
		return nil, p.Classify(response.ResponseCode, response.ResponseText, rawOf(response), nil)
	}
	return p.resultFromTransaction(response, in.Original, in.Merchant, in.Processor), nil
}

func (p *Provider) ValidateAccount(ctx context.Context, in core.AccountValidationInput) (*core.CanonicalAuthorizationResult, error) {
	request := chargeRequest{
		Token:                in.Token.ID,
		Amount:               amountBlock{Currency: in.Token.Currency},
		TransactionReference: in.Token.TransactionReference,
		TransactionType:      string(core.TransactionTypeCardValidation),
		MerchantID:           in.Merchant.PublicID,
		MerchantName:         in.Merchant.MerchantName,
		IsCardValidation:     true,
	}

	var response wireResponse
	if err := p.Call(ctx, opAccountValidation, in.Token.TransactionReference, request, &response); err != nil {
		return nil, err
	}
	if response.ResponseCode != successCode {
		return nil, p.Classify(response.ResponseCode, response.ResponseText, rawOf(response), nil)
	}
	return p.result(response, in.Token, in.Merchant, in.Processor, nil, false), nil
}

func (p *Provider) buildCharge(in core.ChargeInput) (chargeRequest, error) {
	transactionType := in.TransactionType
	if transactionType == "" {
		transactionType = core.TransactionTypeCharge
	}

	isCardValidation := transactionType == core.TransactionTypeCardValidation ||
		providers.IsCardValidation(in.Event, in.Merchant, p.Config().CardValidation)
	if isCardValidation && transactionType == core.TransactionTypeCharge {
		transactionType = core.TransactionTypeCardValidation
	}

	request := chargeRequest{
		Token:                in.Token.ID,
		Amount:               buildAmount(in.Event.Amount),
		TransactionReference: in.Token.TransactionReference,
		TransactionType:      string(transactionType),
		MerchantID:           in.Merchant.PublicID,
		MerchantName:         in.Merchant.MerchantName,
		TerminalID:           in.Processor.TerminalID,
		UniqueCode:           in.Processor.UniqueCode,
		Deferred:             providers.BuildDeferred(in.Token, in.Event),
		ThreeDS:              providers.BuildThreeDS(in.Event.ThreeDS),
		VaultToken:           in.Token.VaultToken,
		IsSubscription:       providers.IsSubscription(in.Token, in.Event, transactionType),
		IsCardValidation:     isCardValidation,
		CVV2:                 in.Event.CVV,
	}

	if core.RequiresSubMerchant(in.Processor) {
		sub, err := core.BuildSubMerchant(in.Merchant, in.Processor, in.Token.CardBrand, p.Config().Facilitators)
		if err != nil {
			return chargeRequest{}, err
		}
		request.SubMerchant = &sub
	}

	if transactionType == core.TransactionTypeCOFSubsequent && in.InitialTransaction != nil {
		request.InitialReference = in.InitialTransaction.TransactionReference
		request.InitialApprovalCode = in.InitialTransaction.ApprovalCode
	}
	return request, nil
}

func (p *Provider) result(
	response wireResponse,
	token core.TokenRecord,
	merchant core.MerchantRecord,
	processor core.ProcessorConfig,
	threeDS *core.ThreeDSFields,
	deferred bool,
) *core.CanonicalAuthorizationResult {
	return &core.CanonicalAuthorizationResult{
		ApprovedTransactionAmount: response.ApprovedAmount,
		ResponseCode:              response.ResponseCode,
		ResponseText:              response.ResponseText,
		TicketNumber:              response.TicketNumber,
		TransactionID:             response.TransactionID,
		TransactionReference:      token.TransactionReference,
		ThreeDSIndicator:          core.ResolveECI(threeDS),
		Details: core.TransactionDetails{
			ApprovalCode:      response.ApprovalCode,
			BinCard:           core.SummarizeBin(token.Bin),
			CardHolderName:    token.CardHolderName,
			CardType:          strings.ToUpper(token.CardBrand),
			LastFourDigits:    token.LastFourDigits,
			MerchantName:      merchant.MerchantName,
			ProcessorBankName: processor.AcquirerBank,
			ProcessorName:     ID,
			IsDeferred:        deferred,
		},
		RawResponse: providers.Snapshot(response),
	}
}

func (p *Provider) resultFromTransaction(
	response wireResponse,
	original *core.Transaction,
	merchant core.MerchantRecord,
	processor core.ProcessorConfig,
) *core.CanonicalAuthorizationResult {
	return &core.CanonicalAuthorizationResult{
		ApprovedTransactionAmount: response.ApprovedAmount,
		ResponseCode:              response.ResponseCode,
		ResponseText:              response.ResponseText,
		TicketNumber:              response.TicketNumber,
		TransactionID:             response.TransactionID,
		TransactionReference:      original.TransactionReference,
		Details: core.TransactionDetails{
			ApprovalCode:      response.ApprovalCode,
			BinCard:           core.SummarizeBin(original.BinCard),
			CardHolderName:    original.CardHolderName,
			CardType:          original.CardType,
			LastFourDigits:    original.LastFourDigits,
			MerchantName:      merchant.MerchantName,
			ProcessorBankName: processor.AcquirerBank,
			ProcessorName:     ID,
		},
		RawResponse: providers.Snapshot(response),
	}
}

func rawOf(response wireResponse) map[string]any {
	return providers.Snapshot(response)
}
