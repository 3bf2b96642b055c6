package usecase

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerlock/internal/domain"
)

// SendMoneyUseCase serializes deposits, withdrawals and transfers through the
// account lock registry. Every operation locks all accounts it touches, loads
// them, mutates, persists the new activity and releases the locks.
type SendMoneyUseCase struct {
	locks      *AccountLocks
	lookup     AccountLookup
	activities ActivityStore
	cache      BalanceCache
	observer   OperationObserver
}

// SendMoneyOption configures optional collaborators.
type SendMoneyOption func(*SendMoneyUseCase)

// WithBalanceCache invalidates cached balances after each mutation.
func WithBalanceCache(cache BalanceCache) SendMoneyOption {
	return func(uc *SendMoneyUseCase) { uc.cache = cache }
}

// WithOperationObserver reports every operation's outcome and duration.
func WithOperationObserver(observer OperationObserver) SendMoneyOption {
	return func(uc *SendMoneyUseCase) { uc.observer = observer }
}

// NewSendMoneyUseCase creates a new SendMoneyUseCase.
func NewSendMoneyUseCase(
	locks *AccountLocks,
	lookup AccountLookup,
	activities ActivityStore,
	opts ...SendMoneyOption,
) *SendMoneyUseCase {
	uc := &SendMoneyUseCase{
		locks:      locks,
		lookup:     lookup,
		activities: activities,
	}
	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// MoneyMovement is the result of a successful operation.
type MoneyMovement struct {
	Activity domain.Activity
	// Balance is the derived balance of the debited account, or of the
	// credited account for deposits.
	Balance domain.Money
}

// Deposit credits an account.
func (uc *SendMoneyUseCase) Deposit(ctx context.Context, id domain.AccountID, amount domain.Money) (*MoneyMovement, error) {
	return uc.coordinate(ctx, OperationDeposit, []domain.AccountID{id}, domain.ValidateAmount(amount), func() (*MoneyMovement, error) {
		account, err := uc.lookup.ByID(ctx, id)
		if err != nil {
			return nil, err
		}

		activity, err := account.Deposit(amount)
		if err != nil {
			return nil, err
		}

		return uc.persist(ctx, account, activity)
	})
}

// Withdraw debits an account if its derived balance covers amount.
func (uc *SendMoneyUseCase) Withdraw(ctx context.Context, id domain.AccountID, amount domain.Money) (*MoneyMovement, error) {
	return uc.coordinate(ctx, OperationWithdraw, []domain.AccountID{id}, domain.ValidateAmount(amount), func() (*MoneyMovement, error) {
		account, err := uc.lookup.ByID(ctx, id)
		if err != nil {
			return nil, err
		}

		activity, err := account.Withdraw(amount)
		if err != nil {
			return nil, err
		}

		return uc.persist(ctx, account, activity)
	})
}

// SendMoney moves amount from source to target.
func (uc *SendMoneyUseCase) SendMoney(ctx context.Context, source, target domain.AccountID, amount domain.Money) (*MoneyMovement, error) {
	return uc.coordinate(ctx, OperationSendMoney, []domain.AccountID{source, target}, validateTransfer(source, target, amount), func() (*MoneyMovement, error) {
		from, err := uc.lookup.ByID(ctx, source)
		if err != nil {
			return nil, err
		}

		to, err := uc.lookup.ByID(ctx, target)
		if err != nil {
			return nil, err
		}

		activity, err := from.Transfer(to.ID(), amount)
		if err != nil {
			return nil, err
		}

		return uc.persist(ctx, from, activity)
	})
}

func validateTransfer(source, target domain.AccountID, amount domain.Money) error {
	if source == target {
		return domain.ErrSameAccount
	}
	return domain.ValidateAmount(amount)
}

// coordinate runs fn while holding every id. A non-nil invalid rejects the
// request before any lock is taken. Locks are released on every path,
// including errors returned by fn.
func (uc *SendMoneyUseCase) coordinate(
	ctx context.Context,
	operation string,
	ids []domain.AccountID,
	invalid error,
	fn func() (*MoneyMovement, error),
) (result *MoneyMovement, err error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx).With().Str("operation", operation).Logger()

	defer func() {
		uc.observe(operation, start, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if invalid != nil {
		logger.Debug().Err(invalid).Msg("operation rejected")
		return nil, invalid
	}

	release, err := uc.locks.TryLock(ids...)
	if err != nil {
		logger.Debug().Err(err).Msg("account busy")
		return nil, err
	}
	defer release()

	result, err = fn()
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientFunds):
			logger.Info().Err(err).Msg("operation rejected")
		case isClientError(err):
			logger.Debug().Err(err).Msg("operation rejected")
		default:
			logger.Error().Err(err).Msg("operation failed")
		}

		return nil, err
	}

	uc.invalidate(ctx, logger, ids)

	return result, nil
}

func (uc *SendMoneyUseCase) persist(ctx context.Context, account *domain.Account, activity domain.Activity) (*MoneyMovement, error) {
	if err := uc.activities.StoreActivities(ctx, slices.Collect(account.UnsavedActivities())); err != nil {
		return nil, err
	}

	return &MoneyMovement{Activity: activity, Balance: account.Balance()}, nil
}

func (uc *SendMoneyUseCase) invalidate(ctx context.Context, logger zerolog.Logger, ids []domain.AccountID) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.InvalidateBalance(ctx, ids...); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate cached balance")
	}
}

func (uc *SendMoneyUseCase) observe(operation string, start time.Time, err error) {
	if uc.observer == nil {
		return
	}

	uc.observer.ObserveOperation(operation, Outcome(err), time.Since(start))
}

// Outcome classifies an operation error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrInsufficientFunds):
		return OutcomeInsufficientFunds
	case errors.Is(err, domain.ErrConcurrentOperation):
		return OutcomeConcurrentOperation
	case errors.Is(err, domain.ErrAccountNotFound):
		return OutcomeNotFound
	case isClientError(err):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrAmountTooSmall) ||
		errors.Is(err, domain.ErrAmountTooLarge) ||
		errors.Is(err, domain.ErrSameAccount) ||
		errors.Is(err, domain.ErrAccountNotFound)
}
