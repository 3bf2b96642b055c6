package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/ledgerlock/internal/adapter/http"
	"github.com/iho/ledgerlock/internal/adapter/http/handler"
	"github.com/iho/ledgerlock/internal/adapter/http/middleware"
	"github.com/iho/ledgerlock/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/ledgerlock/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/ledgerlock/internal/adapter/repository/redis"
	"github.com/iho/ledgerlock/internal/domain"
	"github.com/iho/ledgerlock/internal/infrastructure/config"
	"github.com/iho/ledgerlock/internal/infrastructure/logger"
	"github.com/iho/ledgerlock/internal/infrastructure/metrics"
	"github.com/iho/ledgerlock/internal/infrastructure/postgres"
	"github.com/iho/ledgerlock/internal/infrastructure/redis"
	"github.com/iho/ledgerlock/internal/usecase"
)

const rateLimiterCleanupInterval = time.Hour

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}

	appLogger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	ctx = logger.WithContext(ctx)

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	deps := dependencies{storage: store}

	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL, cfg.RedisTimeout)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to redis")

		deps.withRedis(redisClient)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rateLimiter.RunCleanup(ctx, rateLimiterCleanupInterval)

	router, err := buildRouter(cfg, deps, registry, rateLimiter, logger)
	if err != nil {
		return err
	}

	server := newServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// storage is the account store selected by STORAGE_DRIVER.
type storage struct {
	lookup     usecase.AccountLookup
	accounts   usecase.AccountStore
	activities usecase.ActivityStore
	ledger     usecase.LedgerRepository
	health     handler.HealthCheck
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		repo := memory.NewRepository()
		logger.Warn().Msg("using in-memory storage, data is lost on restart")

		return &storage{
			lookup:     repo,
			accounts:   repo,
			activities: repo,
			ledger:     repo,
			health:     handler.HealthCheck{Name: "memory", Ping: repo.Ping},
			close:      func() {},
		}, nil

	case config.StoragePostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		logger.Info().Msg("connected to postgres")

		accountRepo := postgresRepo.NewAccountRepository(pool)

		return &storage{
			lookup:     accountRepo,
			accounts:   accountRepo,
			activities: postgresRepo.NewActivityRepository(pool, postgresRepo.NewRetrier()),
			ledger:     postgresRepo.NewLedgerRepository(pool),
			health:     handler.HealthCheck{Name: "postgres", Ping: pool.Ping},
			close:      pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// dependencies collects everything the router needs besides configuration.
type dependencies struct {
	storage     *storage
	cache       usecase.BalanceCache
	idempotency usecase.IdempotencyStore
	checks      []handler.HealthCheck
}

func (d *dependencies) withRedis(client *goredis.Client) {
	d.cache = redisRepo.NewBalanceCache(client)
	d.idempotency = redisRepo.NewIdempotencyStore(client)
	d.checks = append(d.checks, handler.HealthCheck{
		Name: "redis",
		Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	})
}

func buildRouter(
	cfg *config.Config,
	deps dependencies,
	registry *prometheus.Registry,
	rateLimiter *middleware.RateLimiter,
	logger zerolog.Logger,
) (http.Handler, error) {
	m := metrics.New(registry)
	locks := usecase.NewAccountLocks()
	if err := m.TrackLocks(locks); err != nil {
		return nil, fmt.Errorf("failed to register lock gauge: %w", err)
	}

	if rateLimiter != nil {
		rateLimiter.CountRejections(m.RateLimitHits)
	}

	st := deps.storage
	opts := []usecase.SendMoneyOption{usecase.WithOperationObserver(m)}
	if deps.cache != nil {
		opts = append(opts, usecase.WithBalanceCache(deps.cache))
	}

	accountUC := usecase.NewAccountUseCase(locks, st.lookup, st.accounts, deps.cache, cfg.BalanceCacheTTL)
	moneyUC := usecase.NewSendMoneyUseCase(locks, st.lookup, st.activities, opts...)
	ledgerUC := usecase.NewLedgerUseCase(st.ledger)

	checks := append([]handler.HealthCheck{st.health}, deps.checks...)

	return httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(&createdAccountCounter{AccountUseCase: accountUC, created: m.AccountsCreated}),
		TransferHandler:  handler.NewTransferHandler(moneyUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		HealthHandler:    handler.NewHealthHandler(checks...),
		Logger:           logger,
		IdempotencyStore: deps.idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		Gatherer:         registry,
	}), nil
}

func newServer(cfg *config.Config, router http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

// createdAccountCounter counts accounts opened through the API.
type createdAccountCounter struct {
	*usecase.AccountUseCase

	created prometheus.Counter
}

func (c *createdAccountCounter) CreateAccount(ctx context.Context, startingBalance domain.Money) (*domain.Account, error) {
	account, err := c.AccountUseCase.CreateAccount(ctx, startingBalance)
	if err == nil {
		c.created.Inc()
	}
	return account, err
}
