package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/danqs/tax-engine/pkg/utils"
)

// ApplyPenalty computes the late-payment penalty for an amount against a
// due date. On-time payments owe nothing. Late payments owe a flat
// amount * rate/100 regardless of how late they are, clamped to
// amount * cap when cap is positive.
func ApplyPenalty(amount decimal.Decimal, dueDate, now time.Time, penaltyRate, penaltyCap decimal.Decimal) decimal.Decimal {
	if !now.After(dueDate) {
		return decimal.Zero
	}

	penalty := amount.Mul(utils.Percent(penaltyRate))

	if penaltyCap.IsPositive() {
		maxPenalty := amount.Mul(penaltyCap)
		if penalty.GreaterThan(maxPenalty) {
			penalty = maxPenalty
		}
	}

	return penalty
}
