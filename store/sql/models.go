package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-acquiring/core"
)

type transactionRecord struct {
	bun.BaseModel `bun:"table:acq_transactions,alias:tx"`

	ID                        string         `bun:"id,pk"`
	TransactionID             string         `bun:"transaction_id,notnull"`
	TransactionReference      string         `bun:"transaction_reference,notnull"`
	TicketNumber              string         `bun:"ticket_number"`
	ApprovalCode              string         `bun:"approval_code"`
	MerchantID                string         `bun:"merchant_id,notnull"`
	ProcessorID               string         `bun:"processor_id,notnull"`
	ProcessorName             string         `bun:"processor_name"`
	TransactionType           string         `bun:"transaction_type,notnull"`
	TransactionStatus         string         `bun:"transaction_status,notnull"`
	ApprovedTransactionAmount float64        `bun:"approved_transaction_amount"`
	Amount                    map[string]any `bun:"amount,type:jsonb"`
	BinCard                   string         `bun:"bin_card"`
	LastFourDigits            string         `bun:"last_four_digits"`
	CardHolderName            string         `bun:"card_holder_name"`
	CardType                  string         `bun:"card_type"`
	Country                   string         `bun:"country"`
	IsInitialCOF              bool           `bun:"is_initial_cof,notnull,default:false"`
	ExternalReferenceID       string         `bun:"external_reference_id"`
	RuleDecision              string         `bun:"rule_decision"`
	CreatedAt                 time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *transactionRecord) toDomain() *core.Transaction {
	if r == nil {
		return nil
	}
	return &core.Transaction{
		TransactionID:             r.TransactionID,
		TransactionReference:      r.TransactionReference,
		TicketNumber:              r.TicketNumber,
		ApprovalCode:              r.ApprovalCode,
		MerchantID:                r.MerchantID,
		ProcessorID:               r.ProcessorID,
		ProcessorName:             r.ProcessorName,
		TransactionType:           core.TransactionType(r.TransactionType),
		TransactionStatus:         core.TransactionStatus(r.TransactionStatus),
		ApprovedTransactionAmount: r.ApprovedTransactionAmount,
		Amount:                    amountFromMap(r.Amount),
		BinCard:                   r.BinCard,
		LastFourDigits:            r.LastFourDigits,
		CardHolderName:            r.CardHolderName,
		CardType:                  r.CardType,
		Country:                   r.Country,
		IsInitialCOF:              r.IsInitialCOF,
		ExternalReferenceID:       r.ExternalReferenceID,
		RuleDecision:              r.RuleDecision,
		CreatedAt:                 r.CreatedAt,
	}
}

func newTransactionRecord(tx core.Transaction, now time.Time) *transactionRecord {
	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return &transactionRecord{
		TransactionID:             tx.TransactionID,
		TransactionReference:      tx.TransactionReference,
		TicketNumber:              tx.TicketNumber,
		ApprovalCode:              tx.ApprovalCode,
		MerchantID:                tx.MerchantID,
		ProcessorID:               tx.ProcessorID,
		ProcessorName:             tx.ProcessorName,
		TransactionType:           string(tx.TransactionType),
		TransactionStatus:         string(tx.TransactionStatus),
		ApprovedTransactionAmount: tx.ApprovedTransactionAmount,
		Amount:                    amountToMap(tx.Amount),
		BinCard:                   tx.BinCard,
		LastFourDigits:            tx.LastFourDigits,
		CardHolderName:            tx.CardHolderName,
		CardType:                  tx.CardType,
		Country:                   tx.Country,
		IsInitialCOF:              tx.IsInitialCOF,
		ExternalReferenceID:       tx.ExternalReferenceID,
		RuleDecision:              tx.RuleDecision,
		CreatedAt:                 createdAt.UTC(),
	}
}

// timeoutEventRecord rows live in per-processor tables, so the bun table tag
// here is only a placeholder. Inserts set the real table through
// ModelTableExpr.
type timeoutEventRecord struct {
	bun.BaseModel `bun:"table:acq_timeout_events,alias:te"`

	ID                   string         `bun:"id,pk"`
	TransactionReference string         `bun:"transaction_reference,notnull"`
	ProcessorID          string         `bun:"processor_id,notnull"`
	TransactionStatus    string         `bun:"transaction_status,notnull"`
	Request              map[string]any `bun:"request,type:jsonb"`
	CreatedAt            time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *timeoutEventRecord) toDomain() core.TimeoutRecord {
	if r == nil {
		return core.TimeoutRecord{}
	}
	return core.TimeoutRecord{
		TransactionReference: r.TransactionReference,
		ProcessorID:          r.ProcessorID,
		Status:               core.TransactionStatus(r.TransactionStatus),
		Request:              r.Request,
		CreatedAt:            r.CreatedAt,
	}
}

type merchantInfoRecord struct {
	bun.BaseModel `bun:"table:acq_merchant_info,alias:mi"`

	ID               string    `bun:"id,pk"`
	MerchantID       string    `bun:"merchant_id,notnull,unique"`
	HierarchyID      string    `bun:"hierarchy_id"`
	CompanyID        string    `bun:"company_id"`
	CustomerID       string    `bun:"customer_id"`
	CustomerCategory string    `bun:"customer_category"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *merchantInfoRecord) hierarchy() *core.HierarchyInfo {
	if r == nil {
		return nil
	}
	return &core.HierarchyInfo{
		MerchantID:  r.MerchantID,
		HierarchyID: r.HierarchyID,
		CompanyID:   r.CompanyID,
	}
}

func (r *merchantInfoRecord) customerInfo() *core.CustomerInfo {
	if r == nil {
		return nil
	}
	return &core.CustomerInfo{
		MerchantID: r.MerchantID,
		CustomerID: r.CustomerID,
		Category:   r.CustomerCategory,
	}
}

func amountToMap(amount core.Amount) map[string]any {
	return map[string]any{
		"currency":      amount.Currency,
		"subtotal_iva":  amount.SubtotalIVA,
		"subtotal_iva0": amount.SubtotalIVA0,
		"iva":           amount.IVA,
		"ice":           amount.ICE,
	}
}

func amountFromMap(raw map[string]any) core.Amount {
	amount := core.Amount{}
	if len(raw) == 0 {
		return amount
	}
	if currency, ok := raw["currency"].(string); ok {
		amount.Currency = currency
	}
	amount.SubtotalIVA = floatField(raw, "subtotal_iva")
	amount.SubtotalIVA0 = floatField(raw, "subtotal_iva0")
	amount.IVA = floatField(raw, "iva")
	amount.ICE = floatField(raw, "ice")
	return amount
}

func floatField(raw map[string]any, key string) float64 {
	switch value := raw[key].(type) {
	case float64:
		return value
	case int64:
		return float64(value)
	case int:
		return float64(value)
	default:
		return 0
	}
}
