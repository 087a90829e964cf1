package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-acquiring/core"
)

var (
	_ gocmd.Querier[GetTransactionMessage, *core.Transaction]       = (*GetTransactionQuery)(nil)
	_ gocmd.Querier[ListTransactionsMessage, TransactionPage]       = (*ListTransactionsQuery)(nil)
	_ gocmd.Querier[ListTimeoutEventsMessage, []core.TimeoutRecord] = (*ListTimeoutEventsQuery)(nil)
	_ gocmd.Querier[GetMerchantInfoMessage, MerchantInfoView]       = (*GetMerchantInfoQuery)(nil)
)
