package core

import (
	"fmt"
	"strings"
)

// BinInfo is the bin-catalog snapshot captured when the transaction was
// created.
type BinInfo struct {
	Bin      string
	Brand    string
	Bank     string
	CardType string
	Country  string
}

// ChargeResponse is the externally-visible charge outcome.
type ChargeResponse struct {
	TicketNumber         string             `json:"ticket_number"`
	TransactionReference string             `json:"transaction_reference"`
	TransactionStatus    TransactionStatus  `json:"transaction_status"`
	ResponseCode         string             `json:"response_code"`
	ResponseText         string             `json:"response_text"`
	Details              TransactionDetails `json:"details"`
	ECI                  string             `json:"eci,omitempty"`
	ExternalReferenceID  string             `json:"external_reference_id,omitempty"`
	RuleDecision         string             `json:"rule_decision,omitempty"`
	ProcessorResponse    map[string]any     `json:"processor_response,omitempty"`
}

// CaptureResponse is the legacy flat capture shape.
type CaptureResponse struct {
	TicketNumber              string            `json:"ticket_number"`
	TransactionReference      string            `json:"transaction_reference"`
	TransactionStatus         TransactionStatus `json:"transaction_status"`
	ApprovalCode              string            `json:"approval_code"`
	ApprovedTransactionAmount float64           `json:"approved_transaction_amount"`
	BinCard                   string            `json:"bin_card"`
	LastFourDigits            string            `json:"last_four_digits"`
	MerchantName              string            `json:"merchant_name"`
	ProcessorName             string            `json:"processor_name"`
}

// CaptureDetailsResponse is the structured capture shape; bin fields move
// into the nested details block.
type CaptureDetailsResponse struct {
	TicketNumber              string             `json:"ticket_number"`
	TransactionReference      string             `json:"transaction_reference"`
	TransactionStatus         TransactionStatus  `json:"transaction_status"`
	ApprovedTransactionAmount float64            `json:"approved_transaction_amount"`
	Details                   TransactionDetails `json:"details"`
}

// ResponseNormalizer builds externally-visible response variants from the
// stored transaction, the raw processor result and the bin-info snapshot. It
// runs at the boundary, never inside an adapter.
type ResponseNormalizer struct{}

func NewResponseNormalizer() *ResponseNormalizer {
	return &ResponseNormalizer{}
}

// Charge builds the charge response. Subscription-origin requests carry the
// raw processor result and the trx-rule decision verbatim; approval-status
// responses drop the rule diagnostics.
func (n *ResponseNormalizer) Charge(transaction Transaction, result *CanonicalAuthorizationResult, bin BinInfo, origin string) ChargeResponse {
	response := ChargeResponse{
		TicketNumber:         valueOr(result.TicketNumber, transaction.TicketNumber),
		TransactionReference: valueOr(result.TransactionReference, transaction.TransactionReference),
		TransactionStatus:    transaction.TransactionStatus,
		ResponseCode:         result.ResponseCode,
		ResponseText:         result.ResponseText,
		Details:              result.Details,
	}
	response.Details.BinCard = SummarizeBin(valueOr(result.Details.BinCard, bin.Bin))
	response.Details.LastFourDigits = lastFour(response.Details.LastFourDigits)
	if response.Details.CardType == "" {
		response.Details.CardType = bin.CardType
	}

	if transaction.ExternalReferenceID != "" {
		response.ExternalReferenceID = transaction.ExternalReferenceID
	}
	if origin == OriginSubscriptions {
		response.ProcessorResponse = result.RawResponse
		response.RuleDecision = transaction.RuleDecision
	}
	if transaction.TransactionStatus == TransactionStatusApproval {
		response.RuleDecision = ""
	}
	return response
}

// Capture builds the legacy flat capture shape.
func (n *ResponseNormalizer) Capture(transaction Transaction, result *CanonicalAuthorizationResult) CaptureResponse {
	return CaptureResponse{
		TicketNumber:              valueOr(result.TicketNumber, transaction.TicketNumber),
		TransactionReference:      valueOr(result.TransactionReference, transaction.TransactionReference),
		TransactionStatus:         TransactionStatusApproval,
		ApprovalCode:              valueOr(result.Details.ApprovalCode, transaction.ApprovalCode),
		ApprovedTransactionAmount: result.ApprovedTransactionAmount,
		BinCard:                   SummarizeBin(valueOr(result.Details.BinCard, transaction.BinCard)),
		LastFourDigits:            lastFour(valueOr(result.Details.LastFourDigits, transaction.LastFourDigits)),
		MerchantName:              result.Details.MerchantName,
		ProcessorName:             valueOr(result.Details.ProcessorName, transaction.ProcessorName),
	}
}

// CaptureDetails builds the structured capture shape. Once a capture response
// is built the transaction status is APPROVAL unconditionally.
func (n *ResponseNormalizer) CaptureDetails(transaction Transaction, result *CanonicalAuthorizationResult) CaptureDetailsResponse {
	details := result.Details
	details.BinCard = SummarizeBin(valueOr(result.Details.BinCard, transaction.BinCard))
	details.LastFourDigits = lastFour(valueOr(result.Details.LastFourDigits, transaction.LastFourDigits))
	if details.CardHolderName == "" {
		details.CardHolderName = transaction.CardHolderName
	}
	if details.CardType == "" {
		details.CardType = transaction.CardType
	}
	return CaptureDetailsResponse{
		TicketNumber:              valueOr(result.TicketNumber, transaction.TicketNumber),
		TransactionReference:      valueOr(result.TransactionReference, transaction.TransactionReference),
		TransactionStatus:         TransactionStatusApproval,
		ApprovedTransactionAmount: result.ApprovedTransactionAmount,
		Details:                   details,
	}
}

// ResolveECI resolves the 3DS indicator with raw-over-normalized precedence:
// raw ECI, normalized ECI, zero-padded UCAF collection indicator, empty.
func ResolveECI(three *ThreeDSFields) string {
	if three == nil {
		return ""
	}
	if eci := strings.TrimSpace(three.ECIRaw); eci != "" {
		return eci
	}
	if eci := strings.TrimSpace(three.ECI); eci != "" {
		return eci
	}
	if ucaf := strings.TrimSpace(three.UCAFCollectionIndicator); ucaf != "" {
		return fmt.Sprintf("%02s", ucaf)
	}
	return ""
}

// SummarizeBin reduces a bin to its 6-digit prefix.
func SummarizeBin(bin string) string {
	bin = strings.TrimSpace(bin)
	if len(bin) > 6 {
		return bin[:6]
	}
	return bin
}

func lastFour(digits string) string {
	digits = strings.TrimSpace(digits)
	if len(digits) > 4 {
		return digits[len(digits)-4:]
	}
	return digits
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}
