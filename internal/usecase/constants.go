package usecase

import "time"

const (
	// DefaultBalanceCacheTTL is how long a derived balance stays cached.
	DefaultBalanceCacheTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Operation names reported to the OperationObserver.
const (
	OperationDeposit   = "deposit"
	OperationWithdraw  = "withdraw"
	OperationSendMoney = "send_money"
)

// Outcomes reported to the OperationObserver.
const (
	OutcomeSuccess             = "success"
	OutcomeInsufficientFunds   = "insufficient_funds"
	OutcomeConcurrentOperation = "concurrent_operation"
	OutcomeNotFound            = "not_found"
	OutcomeInvalid             = "invalid"
	OutcomeError               = "error"
)
