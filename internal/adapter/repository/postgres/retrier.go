package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes the repositories react to.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrForeignKeyViolation  = "23503"
	pgErrUniqueViolation      = "23505"
)

// Retrier re-runs a transaction that lost a serialization or deadlock race.
type Retrier struct {
	maxRetries uint64
	initial    time.Duration
	max        time.Duration
}

// RetrierOption tunes a Retrier.
type RetrierOption func(*Retrier)

// WithMaxRetries bounds the number of retries after the first attempt.
func WithMaxRetries(n uint64) RetrierOption {
	return func(r *Retrier) { r.maxRetries = n }
}

// WithBackoff sets the first and the largest wait between attempts.
func WithBackoff(initial, ceiling time.Duration) RetrierOption {
	return func(r *Retrier) {
		r.initial = initial
		r.max = ceiling
	}
}

// NewRetrier creates a Retrier: 3 retries starting at 50ms, capped at 1s.
func NewRetrier(opts ...RetrierOption) *Retrier {
	r := &Retrier{
		maxRetries: 3,
		initial:    50 * time.Millisecond,
		max:        time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retry runs op until it succeeds, fails with a non-transient error, ctx is
// done or the retry budget is spent. The last error is returned.
func (r *Retrier) Retry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initial
	policy.MaxInterval = r.max
	policy.MaxElapsedTime = 0

	attempt := 0
	notify := func(err error, wait time.Duration) {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("transient database error, retrying")
	}

	return backoff.RetryNotify(func() error {
		attempt++
		err := op()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, r.maxRetries), ctx), notify)
}

// isRetryableError reports whether the transaction can simply be run again.
func isRetryableError(err error) bool {
	return hasPgCode(err, pgErrDeadlock, pgErrSerializationFailure)
}

func hasPgCode(err error, codes ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	for _, code := range codes {
		if pgErr.Code == code {
			return true
		}
	}

	return false
}
