package usecase

import (
	"context"
	"time"

	"github.com/iho/ledgerlock/internal/domain"
)

// AccountLookup loads account aggregates.
type AccountLookup interface {
	// ByID returns domain.ErrAccountNotFound when the account does not exist.
	ByID(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	All(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// AccountStore persists brand-new accounts.
type AccountStore interface {
	Store(ctx context.Context, account *domain.Account) error
}

// ActivityStore durably appends newly created activities.
type ActivityStore interface {
	StoreActivities(ctx context.Context, activities []domain.Activity) error
}

// LedgerRepository computes ledger-wide totals.
type LedgerRepository interface {
	Totals(ctx context.Context) (domain.LedgerTotals, error)
	// Snapshot returns the totals and passes every account, oldest first, to
	// visit, all read from one consistent view of the ledger. visit must not
	// call back into the repository.
	Snapshot(ctx context.Context, visit func(*domain.Account) error) (domain.LedgerTotals, error)
}

// BalanceCache caches derived balances.
type BalanceCache interface {
	GetBalance(ctx context.Context, id domain.AccountID) (domain.Money, bool, error)
	SetBalance(ctx context.Context, id domain.AccountID, balance domain.Money, ttl time.Duration) error
	InvalidateBalance(ctx context.Context, ids ...domain.AccountID) error
}

// OperationObserver records the outcome of coordinated operations.
type OperationObserver interface {
	ObserveOperation(operation, outcome string, duration time.Duration)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
