package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerlock/internal/domain"
)

// AccountUseCase handles account creation and read-side queries.
type AccountUseCase struct {
	locks    *AccountLocks
	lookup   AccountLookup
	store    AccountStore
	cache    BalanceCache
	cacheTTL time.Duration
}

// NewAccountUseCase creates a new AccountUseCase. cache may be nil. locks must
// be the registry shared with SendMoneyUseCase.
func NewAccountUseCase(
	locks *AccountLocks,
	lookup AccountLookup,
	store AccountStore,
	cache BalanceCache,
	cacheTTL time.Duration,
) *AccountUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultBalanceCacheTTL
	}

	return &AccountUseCase{
		locks:    locks,
		lookup:   lookup,
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// CreateAccount opens an account with a fresh id.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, startingBalance domain.Money) (*domain.Account, error) {
	if err := domain.ValidateStartingBalance(startingBalance); err != nil {
		return nil, err
	}

	account := domain.OpenAccount(domain.NewAccountID(), startingBalance)
	if err := uc.store.Store(ctx, account); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Stringer("account_id", account.ID()).
		Stringer("starting_balance", startingBalance).
		Msg("account created")

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	return uc.lookup.ByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.lookup.All(ctx, limit, offset)
}

// QueryBalance returns the derived balance, served from the cache when
// possible. Cache failures are logged and fall through to a lookup.
//
// A missed balance is only written back while the account is held, so it
// cannot land after the invalidation of a concurrent mutation. When the
// account is busy the balance is served uncached.
func (uc *AccountUseCase) QueryBalance(ctx context.Context, id domain.AccountID) (domain.Money, error) {
	if uc.cache == nil {
		return uc.loadBalance(ctx, id)
	}

	logger := zerolog.Ctx(ctx).With().Stringer("account_id", id).Logger()

	balance, ok, err := uc.cache.GetBalance(ctx, id)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("balance cache read failed")
	case ok:
		return balance, nil
	}

	release, err := uc.locks.TryLock(id)
	if err != nil {
		logger.Debug().Err(err).Msg("account busy, balance not cached")
		return uc.loadBalance(ctx, id)
	}
	defer release()

	balance, err = uc.loadBalance(ctx, id)
	if err != nil {
		return domain.Money{}, err
	}

	if err := uc.cache.SetBalance(ctx, id, balance, uc.cacheTTL); err != nil {
		logger.Warn().Err(err).Msg("balance cache write failed")
	}

	return balance, nil
}

func (uc *AccountUseCase) loadBalance(ctx context.Context, id domain.AccountID) (domain.Money, error) {
	account, err := uc.lookup.ByID(ctx, id)
	if err != nil {
		return domain.Money{}, err
	}

	return account.Balance(), nil
}

// ListActivities returns the account's activities at or after since, oldest
// first. A zero since returns the full history.
func (uc *AccountUseCase) ListActivities(ctx context.Context, id domain.AccountID, since time.Time) ([]domain.Activity, error) {
	account, err := uc.lookup.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return slices.Collect(account.ActivitiesSince(since)), nil
}
