package sandbox

import (
	"context"
	"strings"

	"github.com/goliatone/go-acquiring/core"
	"github.com/goliatone/go-acquiring/providers"
	"github.com/google/uuid"
)

const ID = "sandbox"

const (
	successCode = "000"
	successText = "Transaccion aprobada"
)

// Provider is the local echo processor. Every operation approves without a
// downstream call, which keeps integration environments deterministic.
type Provider struct {
	providers.Base
}

func New(deps providers.Dependencies) *Provider {
	return &Provider{Base: providers.NewBase(ID, core.ProcessorErrorTable{}, deps)}
}

func (p *Provider) Tokenize(ctx context.Context, in core.TokenizeInput) (*core.CanonicalAuthorizationResult, error) {
	result := p.approve("", in.Merchant, core.ProcessorConfig{})
	result.TransactionID = uuid.NewString()
	result.Details.BinCard = core.SummarizeBin(in.CardNumber)
	result.Details.CardHolderName = in.CardHolderName
	return result, nil
}

func (p *Provider) Charge(ctx context.Context, in core.ChargeInput) (*core.CanonicalAuthorizationResult, error) {
	result := p.approve(in.Token.TransactionReference, in.Merchant, in.Processor)
	result.ApprovedTransactionAmount = in.Event.Amount.Total()
	result.ThreeDSIndicator = core.ResolveECI(in.Event.ThreeDS)
	fillTokenDetails(result, in.Token)
	return result, nil
}

func (p *Provider) PreAuthorize(ctx context.Context, in core.PreAuthInput) (*core.CanonicalAuthorizationResult, error) {
	result := p.approve(in.Token.TransactionReference, in.Merchant, in.Processor)
	result.ApprovedTransactionAmount = in.Event.Amount.Total()
	fillTokenDetails(result, in.Token)
	return result, nil
}

func (p *Provider) ReAuthorize(ctx context.Context, in core.ReAuthInput) (*core.CanonicalAuthorizationResult, error) {
	if in.Original == nil {
		return nil, core.ValidationError("reauthorization requires the original preauthorization", nil)
	}
	result := p.approve(in.Original.TransactionReference, in.Merchant, in.Processor)
	result.ApprovedTransactionAmount = in.Amount.Total()
	fillTransactionDetails(result, in.Original)
	return result, nil
}

func (p *Provider) Capture(ctx context.Context, in core.CaptureInput) (*core.CanonicalAuthorizationResult, error) {
	if in.Original == nil {
		return nil, core.ValidationError("capture requires the original preauthorization", nil)
	}
	result := p.approve(in.Original.TransactionReference, in.Merchant, in.Processor)
	result.ApprovedTransactionAmount = in.Original.ApprovedTransactionAmount
	if in.Event.Amount != nil {
		result.ApprovedTransactionAmount = in.Event.Amount.Total()
	}
	fillTransactionDetails(result, in.Original)
	return result, nil
}

func (p *Provider) ValidateAccount(ctx context.Context, in core.AccountValidationInput) (*core.CanonicalAuthorizationResult, error) {
	result := p.approve(in.Token.TransactionReference, in.Merchant, in.Processor)
	fillTokenDetails(result, in.Token)
	return result, nil
}

func (p *Provider) approve(transactionReference string, merchant core.MerchantRecord, processor core.ProcessorConfig) *core.CanonicalAuthorizationResult {
	return &core.CanonicalAuthorizationResult{
		ResponseCode:         successCode,
		ResponseText:         successText,
		TicketNumber:         ticketNumber(),
		TransactionID:        uuid.NewString(),
		TransactionReference: transactionReference,
		Details: core.TransactionDetails{
			ApprovalCode:      approvalCode(),
			MerchantName:      merchant.MerchantName,
			ProcessorBankName: processor.AcquirerBank,
			ProcessorName:     ID,
		},
	}
}

func fillTokenDetails(result *core.CanonicalAuthorizationResult, token core.TokenRecord) {
	result.Details.BinCard = core.SummarizeBin(token.Bin)
	result.Details.CardHolderName = token.CardHolderName
	result.Details.CardType = token.CardBrand
	result.Details.LastFourDigits = token.LastFourDigits
}

func fillTransactionDetails(result *core.CanonicalAuthorizationResult, original *core.Transaction) {
	result.Details.BinCard = core.SummarizeBin(original.BinCard)
	result.Details.CardHolderName = original.CardHolderName
	result.Details.CardType = original.CardType
	result.Details.LastFourDigits = original.LastFourDigits
}

// ticketNumber derives an 18-digit numeric ticket from a fresh UUID so two
// sandbox approvals never collide.
func ticketNumber() string {
	id := uuid.New()
	digits := make([]byte, 0, 18)
	for _, b := range id {
		digits = append(digits, '0'+b%10)
		if len(digits) == 18 {
			break
		}
	}
	return string(digits)
}

func approvalCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:6])
}
