package providers

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-acquiring/core"
)

// WireDeferred is the deferred-payment block as every processor wire
// contract carries it: two-digit, zero-padded text fields.
type WireDeferred struct {
	CreditType  string `json:"credit_type"`
	GraceMonths string `json:"grace_months"`
	Months      string `json:"months"`
}

// WireThreeDS is the 3DS evidence block propagated downstream.
type WireThreeDS struct {
	ECI                  string `json:"eci"`
	CAVV                 string `json:"cavv,omitempty"`
	XID                  string `json:"xid,omitempty"`
	SpecificationVersion string `json:"specification_version,omitempty"`
}

// IsDeferred reports whether the charge is deferred. Two independent signals
// feed it: the token-level flag and the computed months check; either one
// being true makes the charge deferred.
func IsDeferred(token core.TokenRecord, event core.ChargeEvent) bool {
	if token.IsDeferred {
		return true
	}
	if event.Months > 1 {
		return true
	}
	return event.Deferred != nil && event.Deferred.Months > 1
}

// BuildDeferred computes the deferred block, nil when the charge is not
// deferred. Credit type, grace months and months are zero-padded to two
// digits.
func BuildDeferred(token core.TokenRecord, event core.ChargeEvent) *WireDeferred {
	if !IsDeferred(token, event) {
		return nil
	}
	deferred := core.DeferredOptions{}
	if event.Deferred != nil {
		deferred = *event.Deferred
	}
	months := deferred.Months
	if months == 0 {
		months = event.Months
	}
	return &WireDeferred{
		CreditType:  padTwo(deferred.CreditType),
		GraceMonths: padTwo(deferred.GraceMonths),
		Months:      fmt.Sprintf("%02d", months),
	}
}

// BuildThreeDS propagates the 3DS block only when an ECI-equivalent value is
// present, preferring the raw ECI over the normalized one.
func BuildThreeDS(three *core.ThreeDSFields) *WireThreeDS {
	eci := core.ResolveECI(three)
	if eci == "" {
		return nil
	}
	return &WireThreeDS{
		ECI:                  eci,
		CAVV:                 three.CAVV,
		XID:                  three.XID,
		SpecificationVersion: three.SpecificationVersion,
	}
}

// IsSubscription reports whether the charge is a subscription charge: it
// originates from subscriptions, a vault token is present and it is not a
// validation-only charge.
func IsSubscription(token core.TokenRecord, event core.ChargeEvent, transactionType core.TransactionType) bool {
	if event.Origin != core.OriginSubscriptions {
		return false
	}
	if strings.TrimSpace(token.VaultToken) == "" {
		return false
	}
	return transactionType != core.TransactionTypeCardValidation
}

// IsCardValidation applies the zero-amount validation rule: full amount zero,
// merchant country not excluded and the feature flag enabled. The
// subscription-validation metadata flag forces it regardless.
func IsCardValidation(event core.ChargeEvent, merchant core.MerchantRecord, cfg core.CardValidationConfig) bool {
	if event.SubscriptionValidation() {
		return true
	}
	if !cfg.ZeroAmountEnabled {
		return false
	}
	if cfg.Excluded(merchant.Country) {
		return false
	}
	return event.Amount.Total() == 0
}

func padTwo(value string) string {
	return fmt.Sprintf("%02s", strings.TrimSpace(value))
}
