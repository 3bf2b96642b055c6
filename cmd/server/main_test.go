package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/ledgerlock/internal/adapter/http/middleware"
	"github.com/iho/ledgerlock/internal/infrastructure/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StorageDriver:       config.StorageMemory,
		HTTPPort:            "0",
		HTTPReadTimeout:     time.Second,
		HTTPWriteTimeout:    time.Second,
		HTTPIdleTimeout:     time.Second,
		HTTPShutdownTimeout: time.Second,
		BalanceCacheTTL:     time.Minute,
		IdempotencyTTL:      time.Minute,
		RateLimitRPS:        1000,
		RateLimitBurst:      1000,
	}
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.StorageDriver = "sqlite"

	if _, err := openStorage(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected unknown driver to fail")
	}
}

func TestBuildRouter_MemoryStorage(t *testing.T) {
	cfg := memoryConfig()

	store, err := openStorage(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("openStorage: %v", err)
	}
	defer store.close()

	registry := prometheus.NewRegistry()
	router, err := buildRouter(cfg, dependencies{storage: store}, registry, middleware.NewRateLimiter(1000, 1000), zerolog.Nop())
	if err != nil {
		t.Fatalf("buildRouter: %v", err)
	}

	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/accounts", "application/json", strings.NewReader(`{"starting_balance":"50"}`))
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/ready")
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ready, got %d", resp.StatusCode)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := map[string]bool{}
	for _, family := range families {
		found[family.GetName()] = true
	}
	for _, name := range []string{"ledgerlock_locks_held", "ledgerlock_accounts_created_total"} {
		if !found[name] {
			t.Fatalf("expected %s to be registered", name)
		}
	}
}

func TestBuildRouter_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := memoryConfig()
	store, err := openStorage(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("openStorage: %v", err)
	}

	deps := dependencies{storage: store}
	deps.withRedis(client)

	if deps.cache == nil || deps.idempotency == nil || len(deps.checks) != 1 {
		t.Fatalf("expected redis-backed dependencies, got %+v", deps)
	}

	router, err := buildRouter(cfg, deps, prometheus.NewRegistry(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildRouter: %v", err)
	}

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(`{"starting_balance":"5"}`))
		req.Header.Set(middleware.IdempotencyKeyHeader, "open-once")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	second := send()

	if first.Code != http.StatusCreated {
		t.Fatalf("expected first request to create, got %d", first.Code)
	}
	if second.Header().Get(middleware.IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected second request to be replayed")
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("expected the replay to keep status 201, got %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected identical bodies, got %s and %s", first.Body.String(), second.Body.String())
	}
}

func TestNewServer(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPPort = "9090"

	server := newServer(cfg, http.NewServeMux())
	if server.Addr != ":9090" || server.IdleTimeout != time.Second {
		t.Fatalf("unexpected server: %+v", server)
	}
}
