package query

import (
	"fmt"
	"strings"
)

const (
	TypeGetTransaction    = "acquiring.query.transaction.get"
	TypeListTransactions  = "acquiring.query.transaction.list"
	TypeListTimeoutEvents = "acquiring.query.timeout_events.list"
	TypeGetMerchantInfo   = "acquiring.query.merchant_info.get"
)

type GetTransactionMessage struct {
	TransactionReference string
}

func (GetTransactionMessage) Type() string { return TypeGetTransaction }

func (m GetTransactionMessage) Validate() error {
	if strings.TrimSpace(m.TransactionReference) == "" {
		return fmt.Errorf("query: transaction reference is required")
	}
	return nil
}

type ListTransactionsMessage struct {
	MerchantID string
	Limit      int
	Offset     int
}

func (ListTransactionsMessage) Type() string { return TypeListTransactions }

func (m ListTransactionsMessage) Validate() error {
	if strings.TrimSpace(m.MerchantID) == "" {
		return fmt.Errorf("query: merchant id is required")
	}
	return nil
}

type ListTimeoutEventsMessage struct {
	ProcessorID string
	Limit       int
}

func (ListTimeoutEventsMessage) Type() string { return TypeListTimeoutEvents }

func (m ListTimeoutEventsMessage) Validate() error {
	if strings.TrimSpace(m.ProcessorID) == "" {
		return fmt.Errorf("query: processor id is required")
	}
	return nil
}

type GetMerchantInfoMessage struct {
	MerchantID string
}

func (GetMerchantInfoMessage) Type() string { return TypeGetMerchantInfo }

func (m GetMerchantInfoMessage) Validate() error {
	if strings.TrimSpace(m.MerchantID) == "" {
		return fmt.Errorf("query: merchant id is required")
	}
	return nil
}
