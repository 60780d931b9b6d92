package config

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// RejectWritesDuringClosing selects the backpressure policy while a period is
// in Closing status: when true, mutating commands on the period fail fast with
// a closing-in-progress error; when false, they wait on the period lock.
//
// Set via env:
// - CLOSING_REJECT_WRITES=true (default)
func RejectWritesDuringClosing() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("CLOSING_REJECT_WRITES")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// UncertainClaimReviewThreshold is the recognized amount above which an
// Uncertain claim gets flagged for review.
//
// Set via env:
// - UNCERTAIN_CLAIM_REVIEW_THRESHOLD=10000000
func UncertainClaimReviewThreshold() decimal.Decimal {
	raw := strings.TrimSpace(os.Getenv("UNCERTAIN_CLAIM_REVIEW_THRESHOLD"))
	if raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil && d.IsPositive() {
			return d
		}
	}
	return decimal.NewFromInt(10_000_000)
}
