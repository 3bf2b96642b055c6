package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrAmountTooLarge = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall = errors.New("amount below minimum allowed")
)

// Validation constants
const (
	MaxAmount = "1000000000000" // 1 trillion
	MinAmount = "0.01"

	MaxPageSize     = 100
	DefaultPageSize = 20
)

var (
	maxAmount = decimal.RequireFromString(MaxAmount)
	minAmount = decimal.RequireFromString(MinAmount)
)

// ValidateAmount validates a deposit, withdrawal or transfer amount.
func ValidateAmount(amount Money) error {
	d := amount.Decimal()

	if d.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if d.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinAmount)
	}

	if d.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateStartingBalance allows zero but nothing negative or oversized.
func ValidateStartingBalance(amount Money) error {
	if !amount.IsNonNegative() {
		return fmt.Errorf("%w: starting balance cannot be negative", ErrInvalidAmount)
	}

	if amount.Decimal().GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidatePagination clamps pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
