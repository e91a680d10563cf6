package engine

import "github.com/shopspring/decimal"

// =============================================================================
// PENDING AMOUNT - Outstanding obligation for a period
// =============================================================================

// CollectedAmount sums the verified payments whose payment day falls within
// the period's inclusive bounds. Unverified payments never count.
func CollectedAmount(payments []PaymentRecord, period Period) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		if !p.Verified {
			continue
		}
		if !period.ContainsTime(p.PaymentDate) {
			continue
		}
		sum = sum.Add(p.Amount)
	}
	return sum
}

// PendingAmount returns how much of the expected amount is still outstanding
// for the period: max(0, expected - verified sum in period).
//
// The result is never negative. Over-collection is absorbed silently; it is
// not carried forward and not reported as credit.
func PendingAmount(expected decimal.Decimal, payments []PaymentRecord, period Period) decimal.Decimal {
	pending := expected.Sub(CollectedAmount(payments, period))
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}
