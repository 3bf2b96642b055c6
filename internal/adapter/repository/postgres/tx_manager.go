package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerlock/internal/infrastructure/postgres/generated"
)

// pgxPool is the subset of *pgxpool.Pool the repositories use.
type pgxPool interface {
	generated.DBTX
	Begin(context.Context) (pgx.Tx, error)
	BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error)
}

// snapshotTxOptions gives every statement of a transaction the same view of
// the database.
var snapshotTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// TxManager runs repository writes inside a single transaction.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (*Tx, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// WithTx runs fn in a transaction. It commits when fn succeeds and rolls
// back otherwise.
func (m *TxManager) WithTx(ctx context.Context, fn func(q *generated.Queries) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}

	return runInTx(ctx, tx, fn)
}

// WithSnapshot runs fn in a read-only REPEATABLE READ transaction.
func (m *TxManager) WithSnapshot(ctx context.Context, fn func(q *generated.Queries) error) error {
	tx, err := m.pool.BeginTx(ctx, snapshotTxOptions)
	if err != nil {
		return err
	}

	return runInTx(ctx, &Tx{tx: tx}, fn)
}

func runInTx(ctx context.Context, tx *Tx, fn func(q *generated.Queries) error) error {
	if err := fn(generated.New(tx.PgxTx())); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
