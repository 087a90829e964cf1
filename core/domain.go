package core

import (
	"strings"
	"time"
)

type TransactionType string

const (
	TransactionTypeCharge           TransactionType = "CHARGE"
	TransactionTypeCardValidation   TransactionType = "CARD_VALIDATION"
	TransactionTypeCOFSubsequent    TransactionType = "COF_SUBSEQUENT"
	TransactionTypePreauthorization TransactionType = "PREAUTHORIZATION"
	TransactionTypeReauthorization  TransactionType = "REAUTHORIZATION"
	TransactionTypeCapture          TransactionType = "CAPTURE"
)

type TransactionStatus string

const (
	TransactionStatusApproval TransactionStatus = "APPROVAL"
	TransactionStatusDeclined TransactionStatus = "DECLINED"
)

type Jurisdiction string

const (
	JurisdictionOrdinary        Jurisdiction = "ordinary"
	JurisdictionBusinessPartner Jurisdiction = "business_partner"
)

const (
	OriginSubscriptions = "subscriptions"
	OriginTransaction   = "transaction"

	TriggerOnDemand  = "onDemand"
	TriggerScheduled = "scheduled"
)

// MetadataKeySubscriptionValidation marks a charge as a subscription
// validation regardless of its amount.
const MetadataKeySubscriptionValidation = "subscriptionValidation"

// Amount carries the tax breakdown of a transaction amount exactly as it
// arrives on the request event.
type Amount struct {
	Currency     string  `json:"currency"`
	SubtotalIVA  float64 `json:"subtotal_iva"`
	SubtotalIVA0 float64 `json:"subtotal_iva0"`
	IVA          float64 `json:"iva"`
	ICE          float64 `json:"ice"`
}

// Total returns the full transaction amount across all tax buckets.
func (a Amount) Total() float64 {
	return a.SubtotalIVA + a.SubtotalIVA0 + a.IVA + a.ICE
}

// DeferredOptions is the deferred-payment selection attached to a charge.
type DeferredOptions struct {
	CreditType  string `json:"credit_type"`
	GraceMonths string `json:"grace_months"`
	Months      int    `json:"months"`
}

// ThreeDSFields carries the 3DS authentication evidence of a request. ECIRaw
// is the value as received from the authentication provider; ECI is the
// normalized variant.
type ThreeDSFields struct {
	ECIRaw                  string `json:"eci_raw"`
	ECI                     string `json:"eci"`
	UCAFCollectionIndicator string `json:"ucaf_collection_indicator"`
	CAVV                    string `json:"cavv"`
	XID                     string `json:"xid"`
	SpecificationVersion    string `json:"specification_version"`
}

// TokenRecord is the stored card token referenced by the request.
type TokenRecord struct {
	ID                   string
	Bin                  string
	LastFourDigits       string
	CardHolderName       string
	CardBrand            string
	Amount               float64
	Currency             string
	IsDeferred           bool
	VaultToken           string
	SecureID             string
	SecureService        string
	TransactionReference string
}

// MerchantRecord is the merchant profile snapshot for the request.
type MerchantRecord struct {
	PublicID              string
	MerchantName          string
	Country               string
	ConstitutionalCountry string
	Address               string
	City                  string
	ZipCode               string
	TaxID                 string
	SoftDescriptor        string
}

// ProcessorConfig is the processor-level configuration resolved for the
// merchant before the request reaches this core.
type ProcessorConfig struct {
	PublicID             string
	ProcessorName        string
	AcquirerBank         string
	MerchantCategoryCode string
	TerminalID           string
	UniqueCode           string
	SubMerchantID        string
	SoftDescriptor       string
	Jurisdiction         Jurisdiction
}

// AuthorizerContext identifies the upstream caller and its credential.
type AuthorizerContext struct {
	MerchantID    string
	CredentialID  string
	PublicCredID  string
	Channel       string
	GatewayIssued bool
}

// RoutingDecision is the pre-computed processor selection for the request.
// Which processor a merchant uses is decided upstream; this core only
// dispatches on it.
type RoutingDecision struct {
	ProcessorID string
	Stage       string
}

// ChargeEvent is the raw charge request event as received by the entry layer.
type ChargeEvent struct {
	Amount                     Amount
	Deferred                   *DeferredOptions
	Months                     int
	ThreeDS                    *ThreeDSFields
	CVV                        string
	Origin                     string
	SubscriptionTrigger        string
	SubscriptionID             string
	InitialRecurrenceReference string
	IsCardValidation           bool
	IsSubscription             bool
	ProcessorToken             string
	ExternalReferenceID        string
	Metadata                   map[string]string
}

// SubscriptionValidation reports whether the event metadata flags this charge
// as a subscription validation.
func (e ChargeEvent) SubscriptionValidation() bool {
	if len(e.Metadata) == 0 {
		return false
	}
	return strings.EqualFold(e.Metadata[MetadataKeySubscriptionValidation], "true")
}

// CaptureEvent is the raw capture request event.
type CaptureEvent struct {
	Amount       *Amount
	TicketNumber string
}

// ChargeInput aggregates everything a provider needs to authorize a charge.
// Built once by the entry layer and read-only inside this core.
type ChargeInput struct {
	Token           TokenRecord
	Merchant        MerchantRecord
	Processor       ProcessorConfig
	Event           ChargeEvent
	Authorizer      AuthorizerContext
	Routing         RoutingDecision
	TransactionType TransactionType
	// InitialTransaction is the originating card-on-file transaction when the
	// resolver routed this request to the subsequent-charge path.
	InitialTransaction *Transaction
}

// PreAuthInput aggregates the inputs of a preauthorization.
type PreAuthInput struct {
	Token      TokenRecord
	Merchant   MerchantRecord
	Processor  ProcessorConfig
	Event      ChargeEvent
	Authorizer AuthorizerContext
	Routing    RoutingDecision
}

// ReAuthInput aggregates the inputs of a reauthorization against an existing
// preauthorization.
type ReAuthInput struct {
	Merchant   MerchantRecord
	Processor  ProcessorConfig
	Amount     Amount
	Original   *Transaction
	Authorizer AuthorizerContext
	Routing    RoutingDecision
}

// CaptureInput aggregates the inputs of a capture.
type CaptureInput struct {
	Merchant   MerchantRecord
	Processor  ProcessorConfig
	Event      CaptureEvent
	Original   *Transaction
	Authorizer AuthorizerContext
	Routing    RoutingDecision
}

// TokenizeInput aggregates the inputs of a card tokenization.
type TokenizeInput struct {
	Merchant       MerchantRecord
	Processor      ProcessorConfig
	CardNumber     string
	CardHolderName string
	ExpiryMonth    string
	ExpiryYear     string
	CVV            string
	Currency       string
	TotalAmount    float64
	Routing        RoutingDecision
}

// AccountValidationInput aggregates the inputs of a zero-amount account
// validation.
type AccountValidationInput struct {
	Token      TokenRecord
	Merchant   MerchantRecord
	Processor  ProcessorConfig
	Authorizer AuthorizerContext
	Routing    RoutingDecision
}

// TransactionDetails is the per-transaction detail block every provider must
// fill on a successful authorization.
type TransactionDetails struct {
	ApprovalCode      string `json:"approval_code"`
	BinCard           string `json:"bin_card"`
	CardHolderName    string `json:"card_holder_name"`
	CardType          string `json:"card_type"`
	LastFourDigits    string `json:"last_four_digits"`
	MerchantName      string `json:"merchant_name"`
	ProcessorBankName string `json:"processor_bank_name"`
	ProcessorName     string `json:"processor_name"`
	IsDeferred        bool   `json:"is_deferred"`
}

// MessageFields carries optional processor message details alongside the
// canonical response code/text pair.
type MessageFields struct {
	ResponseCode string `json:"response_code"`
	ResponseText string `json:"response_text"`
}

// CanonicalAuthorizationResult is the processor-agnostic outcome of any
// provider operation. ResponseCode and ResponseText are always populated,
// including on synthesized timeout and internal failures.
type CanonicalAuthorizationResult struct {
	ApprovedTransactionAmount float64            `json:"approved_transaction_amount"`
	ResponseCode              string             `json:"response_code"`
	ResponseText              string             `json:"response_text"`
	TicketNumber              string             `json:"ticket_number"`
	TransactionID             string             `json:"transaction_id"`
	TransactionReference      string             `json:"transaction_reference"`
	Details                   TransactionDetails `json:"details"`
	ThreeDSIndicator          string             `json:"three_ds_indicator,omitempty"`
	Messages                  *MessageFields     `json:"messages,omitempty"`
	// RawResponse is the processor response as received, retained for
	// subscription-origin callers.
	RawResponse map[string]any `json:"raw_response,omitempty"`
}

// SubMerchantData is the payment-facilitator identity block required by
// business-partner jurisdictions.
type SubMerchantData struct {
	Address        string `json:"address"`
	City           string `json:"city"`
	CountryCode    string `json:"country_code"`
	FacilitatorID  string `json:"facilitator_id"`
	ID             string `json:"id"`
	SoftDescriptor string `json:"soft_descriptor"`
	TaxID          string `json:"tax_id"`
	ZipCode        string `json:"zip_code"`
}

// Transaction is the stored transaction projection this core reads to resolve
// card-on-file linkage and capture context. It is never mutated here.
type Transaction struct {
	TransactionID             string
	TransactionReference      string
	TicketNumber              string
	ApprovalCode              string
	MerchantID                string
	ProcessorID               string
	ProcessorName             string
	TransactionType           TransactionType
	TransactionStatus         TransactionStatus
	ApprovedTransactionAmount float64
	Amount                    Amount
	BinCard                   string
	LastFourDigits            string
	CardHolderName            string
	CardType                  string
	Country                   string
	IsInitialCOF              bool
	ExternalReferenceID       string
	RuleDecision              string
	CreatedAt                 time.Time
}

// TimeoutRecord is the durable snapshot persisted when a downstream call
// exceeds its budget. A reconciliation job outside this core consumes it.
type TimeoutRecord struct {
	TransactionReference string
	ProcessorID          string
	Status               TransactionStatus
	Request              map[string]any
	CreatedAt            time.Time
}

// HierarchyInfo is the FIS merchant hierarchy placement of a merchant.
type HierarchyInfo struct {
	MerchantID  string
	HierarchyID string
	CompanyID   string
}

// CustomerInfo is the FIS customer classification of a merchant.
type CustomerInfo struct {
	MerchantID string
	CustomerID string
	Category   string
}
