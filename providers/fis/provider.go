package fis

import (
	"context"

	"github.com/goliatone/go-acquiring/core"
	"github.com/goliatone/go-acquiring/providers"
)

const ID = "fis"

const successCode = "00"

const (
	opCharge           = "charge"
	opPreauthorization = "preauthorization"
	opCapture          = "capture"
)

// Defaults applied when the merchant lookups degrade.
const (
	defaultHierarchyID      = "000000"
	defaultCompanyID        = "000000"
	defaultCustomerCategory = "RETAIL"
)

func errorTable() core.ProcessorErrorTable {
	return core.ProcessorErrorTable{
		Declined:   core.NewNativeCodeSet("05", "12", "13", "14", "51", "54", "57", "61"),
		Restricted: core.NewNativeCodeSet("04", "07", "41", "43"),
	}
}

// Provider is the FIS integration. Charges and preauthorizations run a
// sequential chain: hierarchy lookup, customer-info lookup, then the actual
// call. Both lookups are best-effort and degrade to defaults rather than
// aborting the charge.
type Provider struct {
	providers.Base
}

func New(deps providers.Dependencies) *Provider {
	return &Provider{Base: providers.NewBase(ID, errorTable(), deps)}
}

type merchantBlock struct {
	MerchantID       string `json:"merchant_id"`
	HierarchyID      string `json:"hierarchy_id"`
	CompanyID        string `json:"company_id"`
	CustomerID       string `json:"customer_id,omitempty"`
	CustomerCategory string `json:"customer_category"`
	CategoryCode     string `json:"category_code,omitempty"`
}

type chargeRequest struct {
	Token                string                  `json:"token"`
	Amount               float64                 `json:"amount"`
	Currency             string                  `json:"currency"`
	TransactionReference string                  `json:"transaction_reference"`
	Merchant             merchantBlock           `json:"merchant"`
	Deferred             *providers.WireDeferred `json:"deferred,omitempty"`
	ThreeDS              *providers.WireThreeDS  `json:"three_ds,omitempty"`
	SubMerchant          *core.SubMerchantData   `json:"sub_merchant,omitempty"`
	Preauthorization     bool                    `json:"preauthorization"`
}

type wireResponse struct {
	Code           string  `json:"code"`
	Description    string  `json:"description"`
	AuthorizedsAmt float64 `json:"authorized_amount"`
	Reference      string  `json:"reference"`
	AuthCode       string  `json:"auth_code"`
	Ticket         string  `json:"ticket"`
}

func (p *Provider) Tokenize(ctx context.Context, in core.TokenizeInput) (*core.CanonicalAuthorizationResult, error) {
	return p.Unsupported("tokenize")
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

func (p *Provider) ReAuthorize(ctx context.Context, in core.ReAuthInput) (*core.CanonicalAuthorizationResult, error) {
	return p.Unsupported("reauthorization")
}

type captureRequest struct {
	Ticket               string   `json:"ticket"`
	TransactionReference string   `json:"transaction_reference"`
	Amount               *float64 `json:"amount,omitempty"`
	Currency             string   `json:"currency,omitempty"`
	MerchantID           string   `json:"merchant_id"`
}

func (p *Provider) Capture(ctx context.Context, in core.CaptureInput) (*core.CanonicalAuthorizationResult, error) {
	if in.Original == nil {
		return nil, core.ValidationError("capture requires the original preauthorization", nil)
	}
	request := captureRequest{
		Ticket:               in.Event.TicketNumber,
		TransactionReference: in.Original.TransactionReference,
		MerchantID:           in.Merchant.PublicID,
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
	if response.Code != successCode {
		return nil, p.Classify(response.Code, response.Description, providers.Snapshot(response), nil)
	}
	return &core.CanonicalAuthorizationResult{
		ApprovedTransactionAmount: response.AuthorizedsAmt,
		ResponseCode:              response.Code,
		ResponseText:              response.Description,
		TicketNumber:              response.Ticket,
		TransactionID:             response.Reference,
		TransactionReference:      in.Original.TransactionReference,
		Details: core.TransactionDetails{
			ApprovalCode:      response.AuthCode,
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

func (p *Provider) ValidateAccount(ctx context.Context, in core.AccountValidationInput) (*core.CanonicalAuthorizationResult, error) {
	return p.Unsupported("account-validation")
}

func (p *Provider) authorize(ctx context.Context, operation string, in core.ChargeInput, preauth bool) (*core.CanonicalAuthorizationResult, error) {
	merchant := p.lookupMerchant(ctx, in.Merchant, in.Processor)

	request := chargeRequest{
		Token:                in.Token.ID,
		Amount:               in.Event.Amount.Total(),
		Currency:             in.Event.Amount.Currency,
		TransactionReference: in.Token.TransactionReference,
		Merchant:             merchant,
		Deferred:             providers.BuildDeferred(in.Token, in.Event),
		ThreeDS:              providers.BuildThreeDS(in.Event.ThreeDS),
		Preauthorization:     preauth,
	}

	if core.RequiresSubMerchant(in.Processor) {
		sub, err := core.BuildSubMerchant(in.Merchant, in.Processor, in.Token.CardBrand, p.Config().Facilitators)
		if err != nil {
			return nil, err
		}
		request.SubMerchant = &sub
	}

	var response wireResponse
	if err := p.Call(ctx, operation, in.Token.TransactionReference, request, &response); err != nil {
		return nil, err
	}
	if response.Code != successCode {
		return nil, p.Classify(response.Code, response.Description, providers.Snapshot(response), nil)
	}
	return &core.CanonicalAuthorizationResult{
		ApprovedTransactionAmount: response.AuthorizedsAmt,
		ResponseCode:              response.Code,
		ResponseText:              response.Description,
		TicketNumber:              response.Ticket,
		TransactionID:             response.Reference,
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
			IsDeferred:        request.Deferred != nil,
		},
		RawResponse: providers.Snapshot(response),
	}, nil
}

// lookupMerchant runs the sequential hierarchy and customer-info lookups.
// Each one is awaited before the next starts and degrades to defaults on
// failure.
func (p *Provider) lookupMerchant(ctx context.Context, merchant core.MerchantRecord, processor core.ProcessorConfig) merchantBlock {
	block := merchantBlock{
		MerchantID:       merchant.PublicID,
		HierarchyID:      defaultHierarchyID,
		CompanyID:        defaultCompanyID,
		CustomerCategory: defaultCustomerCategory,
		CategoryCode:     processor.MerchantCategoryCode,
	}
	store := p.Merchants()
	if store == nil {
		return block
	}

	hierarchy, err := store.Hierarchy(ctx, merchant.PublicID)
	if err != nil {
		p.warn("hierarchy lookup degraded to defaults", merchant.PublicID, err)
	} else if hierarchy != nil {
		block.HierarchyID = hierarchy.HierarchyID
		block.CompanyID = hierarchy.CompanyID
	}

	customer, err := store.CustomerInfo(ctx, merchant.PublicID)
	if err != nil {
		p.warn("customer-info lookup degraded to defaults", merchant.PublicID, err)
	} else if customer != nil {
		block.CustomerID = customer.CustomerID
		if customer.Category != "" {
			block.CustomerCategory = customer.Category
		}
	}
	return block
}

func (p *Provider) warn(message, merchantID string, err error) {
	if logger := p.Logger(); logger != nil {
		logger.Warn(message, "merchant_id", merchantID, "error", err.Error())
	}
}
