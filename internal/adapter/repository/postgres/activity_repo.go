package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerlock/internal/domain"
	"github.com/iho/ledgerlock/internal/infrastructure/postgres/generated"
)

// ActivityRepository implements usecase.ActivityStore.
type ActivityRepository struct {
	txm     *TxManager
	retrier *Retrier
	ids     *ULIDGenerator
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool, retrier *Retrier) *ActivityRepository {
	return newActivityRepository(pool, retrier)
}

func newActivityRepository(pool pgxPool, retrier *Retrier) *ActivityRepository {
	if retrier == nil {
		retrier = NewRetrier()
	}

	return &ActivityRepository{
		txm:     newTxManagerWithPool(pool),
		retrier: retrier,
		ids:     NewULIDGenerator(),
	}
}

// StoreActivities appends activities in a single transaction. Serialization
// failures and deadlocks are retried with the same row ids.
func (r *ActivityRepository) StoreActivities(ctx context.Context, activities []domain.Activity) error {
	if len(activities) == 0 {
		return nil
	}

	params := make([]generated.CreateActivityParams, 0, len(activities))
	for _, a := range activities {
		params = append(params, activityToParams(r.ids.GenerateAt(a.Timestamp()), a))
	}

	err := r.retrier.Retry(ctx, func() error {
		return r.txm.WithTx(ctx, func(q *generated.Queries) error {
			for _, p := range params {
				if err := q.CreateActivity(ctx, p); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		if hasPgCode(err, pgErrForeignKeyViolation) {
			return fmt.Errorf("%w: activity references an unknown account", domain.ErrAccountNotFound)
		}
		return fmt.Errorf("failed to store activities: %w", err)
	}

	return nil
}
