package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerlock/internal/domain"
	"github.com/iho/ledgerlock/internal/infrastructure/postgres/generated"
)

// AccountRepository implements usecase.AccountLookup and usecase.AccountStore.
type AccountRepository struct {
	queries *generated.Queries
	txm     *TxManager
	ids     *ULIDGenerator
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(pool pgxPool) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(pool),
		txm:     newTxManagerWithPool(pool),
		ids:     NewULIDGenerator(),
	}
}

// ByID loads an account together with its full activity history.
func (r *AccountRepository) ByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, accountIDToUUID(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}

		return nil, fmt.Errorf("failed to load account %s: %w", id, err)
	}

	accounts, err := hydrateAccounts(ctx, r.queries, []generated.Account{row})
	if err != nil {
		return nil, err
	}

	return accounts[0], nil
}

// All lists accounts oldest first.
func (r *AccountRepository) All(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return hydrateAccounts(ctx, r.queries, rows)
}

// Store inserts a new account and any activities recorded on it since it was
// opened, in one transaction.
func (r *AccountRepository) Store(ctx context.Context, account *domain.Account) error {
	unsaved := slices.Collect(account.UnsavedActivities())

	err := r.txm.WithTx(ctx, func(q *generated.Queries) error {
		if err := q.CreateAccount(ctx, generated.CreateAccountParams{
			ID:           accountIDToUUID(account.ID()),
			StartBalance: moneyToNumeric(account.Baseline()),
			CreatedAt:    timeToPgTimestamptz(time.Now()),
		}); err != nil {
			return err
		}

		for _, a := range unsaved {
			if err := q.CreateActivity(ctx, activityToParams(r.ids.GenerateAt(a.Timestamp()), a)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if hasPgCode(err, pgErrUniqueViolation) {
			return fmt.Errorf("account %s already exists: %w", account.ID(), err)
		}
		return fmt.Errorf("failed to store account %s: %w", account.ID(), err)
	}

	return nil
}

// hydrateAccounts fetches the history of every row in one query and rebuilds
// the aggregates.
func hydrateAccounts(ctx context.Context, q *generated.Queries, rows []generated.Account) ([]*domain.Account, error) {
	if len(rows) == 0 {
		return []*domain.Account{}, nil
	}

	ids := make([]pgtype.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	activityRows, err := q.GetActivitiesByAccounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	history := make(map[domain.AccountID][]domain.Activity, len(rows))
	for _, row := range activityRows {
		activity, err := rowToActivity(row)
		if err != nil {
			return nil, err
		}

		if source, ok := activity.Source(); ok {
			history[source] = append(history[source], activity)
		}
		if target, ok := activity.Target(); ok {
			history[target] = append(history[target], activity)
		}
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		id := *uuidToAccountID(row.ID)

		start, err := numericToMoney(row.StartBalance)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", id, err)
		}

		accounts = append(accounts, domain.LoadAccount(id, start, history[id]))
	}

	return accounts, nil
}
