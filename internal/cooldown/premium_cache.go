package cooldown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// PremiumCache holds subscription lookups for a short TTL so the gate is
// not a one-lookup-per-command bottleneck. Backed by redis when a client
// is provided, an in-process map otherwise. Entries going briefly stale
// after a subscription change is acceptable.
type PremiumCache struct {
	client *redis.Client
	ttl    time.Duration

	mu      sync.Mutex
	entries map[int64]premiumEntry
}

type premiumEntry struct {
	premium bool
	expires time.Time
}

// NewPremiumCache creates a cache. client may be nil for the in-process
// fallback.
func NewPremiumCache(client *redis.Client, ttl time.Duration) *PremiumCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &PremiumCache{
		client:  client,
		ttl:     ttl,
		entries: make(map[int64]premiumEntry),
	}
}

func premiumKey(userID int64) string {
	return fmt.Sprintf("premium:user:%d", userID)
}

// Get returns the cached flag and whether it was present. Cache failures
// count as misses.
func (c *PremiumCache) Get(ctx context.Context, userID int64) (bool, bool) {
	if c.client != nil {
		val, err := c.client.Get(ctx, premiumKey(userID)).Result()
		if err != nil {
			return false, false
		}
		return val == "1", true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[userID]
	if !ok || time.Now().After(ent.expires) {
		delete(c.entries, userID)
		return false, false
	}
	return ent.premium, true
}

// Put stores the flag for the cache TTL.
func (c *PremiumCache) Put(ctx context.Context, userID int64, premium bool) {
	if c.client != nil {
		val := "0"
		if premium {
			val = "1"
		}
		c.client.Set(ctx, premiumKey(userID), val, c.ttl)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = premiumEntry{premium: premium, expires: time.Now().Add(c.ttl)}
}
