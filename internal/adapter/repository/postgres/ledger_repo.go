package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerlock/internal/domain"
	"github.com/iho/ledgerlock/internal/infrastructure/postgres/generated"
)

// snapshotPageSize bounds each page of accounts read inside a snapshot.
const snapshotPageSize = 500

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
	txm     *TxManager
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(pool pgxPool) *LedgerRepository {
	return &LedgerRepository{
		queries: generated.New(pool),
		txm:     newTxManagerWithPool(pool),
	}
}

// Totals sums starting balances, deposits and withdrawals over the ledger.
func (r *LedgerRepository) Totals(ctx context.Context) (domain.LedgerTotals, error) {
	return readTotals(ctx, r.queries)
}

// Snapshot reads the totals and pages through every account inside one
// REPEATABLE READ transaction.
func (r *LedgerRepository) Snapshot(ctx context.Context, visit func(*domain.Account) error) (domain.LedgerTotals, error) {
	var totals domain.LedgerTotals

	err := r.txm.WithSnapshot(ctx, func(q *generated.Queries) error {
		var err error
		if totals, err = readTotals(ctx, q); err != nil {
			return err
		}

		for offset := 0; ; offset += snapshotPageSize {
			rows, err := q.ListAccounts(ctx, generated.ListAccountsParams{
				Limit:  snapshotPageSize,
				Offset: int32(offset),
			})
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			accounts, err := hydrateAccounts(ctx, q, rows)
			if err != nil {
				return err
			}

			for _, account := range accounts {
				if err := visit(account); err != nil {
					return err
				}
			}

			if len(rows) < snapshotPageSize {
				return nil
			}
		}
	})
	if err != nil {
		return domain.LedgerTotals{}, err
	}

	return totals, nil
}

func readTotals(ctx context.Context, q *generated.Queries) (domain.LedgerTotals, error) {
	row, err := q.GetLedgerTotals(ctx)
	if err != nil {
		return domain.LedgerTotals{}, fmt.Errorf("failed to read ledger totals: %w", err)
	}

	totals := domain.LedgerTotals{Accounts: row.AccountCount}

	if totals.StartingBalances, err = numericToMoney(row.StartingBalances); err != nil {
		return domain.LedgerTotals{}, err
	}
	if totals.Deposits, err = numericToMoney(row.Deposits); err != nil {
		return domain.LedgerTotals{}, err
	}
	if totals.Withdrawals, err = numericToMoney(row.Withdrawals); err != nil {
		return domain.LedgerTotals{}, err
	}

	return totals, nil
}
