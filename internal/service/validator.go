package service

import (
	"pooled-multisender/internal/core/domain"
	"pooled-multisender/pkg/apperror"

	"lukechampine.com/uint128"
)

// ValidateBatch checks every recipient of ops and sums their amounts. The
// whole batch is rejected when any recipient is malformed, the sum overflows
// 128 bits or the sum exceeds ceiling. source selects the wording of the
// insufficient-funds error.
func ValidateBatch(ops []domain.Operation, ceiling domain.Amount, source domain.FundingSource) (domain.Amount, error) {
	total := uint128.Zero
	for _, op := range ops {
		if !domain.IsValidAccountID(op.Recipient) {
			return uint128.Zero, apperror.ErrInvalidAccount(op.Recipient)
		}
		next := total.AddWrap(op.Amount)
		if next.Cmp(total) < 0 {
			return uint128.Zero, apperror.ErrAmountOverflow()
		}
		total = next
	}

	if total.Cmp(ceiling) > 0 {
		if source == domain.FundingAttached {
			return uint128.Zero, apperror.ErrNotEnoughAttached(ceiling, total)
		}
		return uint128.Zero, apperror.ErrNotEnoughDeposited(ceiling, total)
	}
	return total, nil
}

// sumAmounts adds the amounts of an already validated batch.
func sumAmounts(ops []domain.Operation) domain.Amount {
	total := uint128.Zero
	for _, op := range ops {
		total = total.Add(op.Amount)
	}
	return total
}
