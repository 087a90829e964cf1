package query

import (
	"context"

	"github.com/goliatone/go-acquiring/core"
)

type TransactionReader interface {
	GetByReference(ctx context.Context, reference string) (*core.Transaction, error)
	ListByMerchant(ctx context.Context, merchantID string, limit, offset int) ([]core.Transaction, int, error)
}

type TimeoutEventReader interface {
	ListByProcessor(ctx context.Context, processorID string, limit int) ([]core.TimeoutRecord, error)
}

type MerchantInfoReader interface {
	Hierarchy(ctx context.Context, merchantID string) (*core.HierarchyInfo, error)
	CustomerInfo(ctx context.Context, merchantID string) (*core.CustomerInfo, error)
}

type GetTransactionQuery struct {
	reader TransactionReader
}

func NewGetTransactionQuery(reader TransactionReader) *GetTransactionQuery {
	return &GetTransactionQuery{reader: reader}
}

func (q *GetTransactionQuery) Query(ctx context.Context, msg GetTransactionMessage) (*core.Transaction, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: transaction reader is required")
	}
	return q.reader.GetByReference(ctx, msg.TransactionReference)
}

type TransactionPage struct {
	Items []core.Transaction
	Total int
}

type ListTransactionsQuery struct {
	reader TransactionReader
}

func NewListTransactionsQuery(reader TransactionReader) *ListTransactionsQuery {
	return &ListTransactionsQuery{reader: reader}
}

func (q *ListTransactionsQuery) Query(ctx context.Context, msg ListTransactionsMessage) (TransactionPage, error) {
	if q == nil || q.reader == nil {
		return TransactionPage{}, queryDependencyError("query: transaction reader is required")
	}
	items, total, err := q.reader.ListByMerchant(ctx, msg.MerchantID, msg.Limit, msg.Offset)
	if err != nil {
		return TransactionPage{}, err
	}
	return TransactionPage{Items: items, Total: total}, nil
}

type ListTimeoutEventsQuery struct {
	reader TimeoutEventReader
}

func NewListTimeoutEventsQuery(reader TimeoutEventReader) *ListTimeoutEventsQuery {
	return &ListTimeoutEventsQuery{reader: reader}
}

func (q *ListTimeoutEventsQuery) Query(ctx context.Context, msg ListTimeoutEventsMessage) ([]core.TimeoutRecord, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: timeout event reader is required")
	}
	return q.reader.ListByProcessor(ctx, msg.ProcessorID, msg.Limit)
}

type MerchantInfoView struct {
	Hierarchy *core.HierarchyInfo
	Customer  *core.CustomerInfo
}

type GetMerchantInfoQuery struct {
	reader MerchantInfoReader
}

func NewGetMerchantInfoQuery(reader MerchantInfoReader) *GetMerchantInfoQuery {
	return &GetMerchantInfoQuery{reader: reader}
}

func (q *GetMerchantInfoQuery) Query(ctx context.Context, msg GetMerchantInfoMessage) (MerchantInfoView, error) {
	if q == nil || q.reader == nil {
		return MerchantInfoView{}, queryDependencyError("query: merchant info reader is required")
	}
	hierarchy, err := q.reader.Hierarchy(ctx, msg.MerchantID)
	if err != nil {
		return MerchantInfoView{}, err
	}
	customer, err := q.reader.CustomerInfo(ctx, msg.MerchantID)
	if err != nil {
		return MerchantInfoView{}, err
	}
	return MerchantInfoView{Hierarchy: hierarchy, Customer: customer}, nil
}
