package ledger

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tendhq/tend/internal/domain"
)

// balanceCache is a read-through LRU for hot balance lookups. Mutations
// always write the freshly-committed balance into the cache, so a cached
// read can be at most TTL-stale relative to out-of-process writers and
// never stale relative to this process.
type balanceCache struct {
	lru *expirable.LRU[string, *domain.XPBalance]
}

func newBalanceCache(size int, ttl time.Duration) *balanceCache {
	return &balanceCache{
		lru: expirable.NewLRU[string, *domain.XPBalance](size, nil, ttl),
	}
}

func (c *balanceCache) Get(userID string) (*domain.XPBalance, bool) {
	balance, found := c.lru.Get(userID)
	if !found {
		return nil, false
	}
	// Copy so callers cannot mutate the cached record.
	cp := *balance
	return &cp, true
}

func (c *balanceCache) Set(userID string, balance *domain.XPBalance) {
	cp := *balance
	c.lru.Add(userID, &cp)
}

func (c *balanceCache) Remove(userID string) {
	c.lru.Remove(userID)
}
