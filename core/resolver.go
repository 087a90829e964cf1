package core

import (
	"context"
	"strings"
)

// ChargeResolver decides the transaction subtype of a direct-acquirer charge
// before any request is built. The state machine is evaluated once per
// request and is terminal on first match; validation and on-demand rules are
// always checked before the card-on-file rule so those requests can never be
// misrouted into subsequent-charge handling.
type ChargeResolver struct {
	transactions TransactionStore
	logger       Logger
}

func NewChargeResolver(transactions TransactionStore, logger Logger) *ChargeResolver {
	return &ChargeResolver{transactions: transactions, logger: logger}
}

// Resolve returns a copy of the input with TransactionType assigned and, on
// the subsequent-charge path, the originating transaction attached.
func (r *ChargeResolver) Resolve(ctx context.Context, in ChargeInput) (ChargeInput, error) {
	if in.Event.IsCardValidation {
		in.TransactionType = TransactionTypeCardValidation
		return in, nil
	}

	if in.Event.SubscriptionTrigger == TriggerOnDemand && strings.TrimSpace(in.Event.CVV) != "" {
		// On-demand charges carrying a fresh CVV are plain charges; the
		// subscription linkage must not follow them downstream.
		in.TransactionType = TransactionTypeCharge
		in.Event.IsSubscription = false
		in.Event.SubscriptionID = ""
		in.Event.InitialRecurrenceReference = ""
		return in, nil
	}

	reference := strings.TrimSpace(in.Event.InitialRecurrenceReference)
	if reference == "" && in.Event.IsSubscription {
		reference = strings.TrimSpace(in.Event.ProcessorToken)
	}
	if reference != "" {
		initial := r.lookup(ctx, reference)
		if initial != nil && initial.IsInitialCOF {
			in.TransactionType = TransactionTypeCOFSubsequent
			in.InitialTransaction = initial
			if in.Event.Amount.Total() == 0 {
				in.Event.Amount = initial.Amount
			}
			return in, nil
		}
	}

	in.TransactionType = TransactionTypeCharge
	return in, nil
}

// lookup is best-effort: an unknown reference or a store failure falls back
// to the plain-charge path.
func (r *ChargeResolver) lookup(ctx context.Context, reference string) *Transaction {
	if r == nil || r.transactions == nil {
		return nil
	}
	transaction, err := r.transactions.GetByReference(ctx, reference)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("card-on-file reference lookup failed",
				"transaction_reference", reference,
				"error", err.Error(),
			)
		}
		return nil
	}
	return transaction
}
