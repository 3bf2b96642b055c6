package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/ledgerlock/internal/domain"
)

// BalanceCache implements usecase.BalanceCache using Redis. Balances are
// stored as decimal strings under "balance:<account id>".
type BalanceCache struct {
	client redis.Cmdable
	prefix string
}

// NewBalanceCache creates a new BalanceCache.
func NewBalanceCache(client redis.Cmdable) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
	}
}

// GetBalance returns the cached balance and whether it was present.
func (c *BalanceCache) GetBalance(ctx context.Context, id domain.AccountID) (domain.Money, bool, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Money{}, false, nil
	}
	if err != nil {
		return domain.Money{}, false, err
	}

	balance, err := domain.ParseMoney(raw)
	if err != nil {
		return domain.Money{}, false, fmt.Errorf("corrupt cached balance for %s: %w", id, err)
	}

	return balance, true, nil
}

// SetBalance caches a balance for ttl.
func (c *BalanceCache) SetBalance(ctx context.Context, id domain.AccountID, balance domain.Money, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(id), balance.String(), ttl).Err()
}

// InvalidateBalance drops the cached balances of ids.
func (c *BalanceCache) InvalidateBalance(ctx context.Context, ids ...domain.AccountID) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, c.key(id))
	}

	return c.client.Del(ctx, keys...).Err()
}

func (c *BalanceCache) key(id domain.AccountID) string {
	return c.prefix + id.String()
}
