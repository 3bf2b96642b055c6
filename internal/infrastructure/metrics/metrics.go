package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/ledgerlock/internal/usecase"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registerer prometheus.Registerer

	// Operation metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	LockConflicts     *prometheus.CounterVec

	// Account metrics
	AccountsCreated prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting and idempotency
	RateLimitHits     prometheus.Counter
	IdempotentReplays prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registerer: reg,

		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerlock_operations_total",
				Help: "Deposits, withdrawals and transfers by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerlock_operation_duration_seconds",
				Help:    "Duration of coordinated operations including lock acquisition",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		LockConflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerlock_lock_conflicts_total",
				Help: "Operations rejected because an account was busy",
			},
			[]string{"operation"},
		),

		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerlock_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerlock_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerlock_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerlock_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		}),
		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerlock_idempotent_replays_total",
			Help: "Responses served from the idempotency store",
		}),
	}
}

// ObserveOperation implements usecase.OperationObserver.
func (m *Metrics) ObserveOperation(operation, outcome string, duration time.Duration) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())

	if outcome == usecase.OutcomeConcurrentOperation {
		m.LockConflicts.WithLabelValues(operation).Inc()
	}
}

// TrackLocks exposes the number of accounts currently locked.
func (m *Metrics) TrackLocks(locks *usecase.AccountLocks) error {
	return m.registerer.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "ledgerlock_locks_held",
			Help: "Accounts with an operation in flight",
		},
		func() float64 { return float64(locks.Len()) },
	))
}
