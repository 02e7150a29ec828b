package cooldown

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryStore is a token-bucket store with one limiter per key and
// periodic cleanup of idle entries. Suitable for single-instance
// deployments; use RedisStore when running more than one replica.
type MemoryStore struct {
	mu           sync.Mutex
	entries      map[string]*memoryEntry
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type memoryEntry struct {
	lim      *rate.Limiter
	window   time.Duration
	lastSeen time.Time
}

type MemoryStoreOption func(*MemoryStore)

func WithIdleTTL(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) { s.cleanupEvery = d }
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries:      make(map[string]*memoryEntry),
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reserve implements Store. The per-key limiter refills linearly at one
// token per window. A caller's window can change when their subscription
// flips; the limiter is rebuilt when that happens.
func (s *MemoryStore) Reserve(_ context.Context, key string, window time.Duration) (time.Duration, error) {
	now := time.Now()

	s.mu.Lock()
	ent, ok := s.entries[key]
	if !ok || ent.window != window {
		ent = &memoryEntry{
			lim:    rate.NewLimiter(rate.Every(window), 1),
			window: window,
		}
		s.entries[key] = ent
	}
	ent.lastSeen = now
	s.mu.Unlock()

	res := ent.lim.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return delay, nil
	}
	return 0, nil
}

// Cleanup drops entries not seen within the idle TTL.
func (s *MemoryStore) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor cleans idle keys periodically until ctx is cancelled.
func (s *MemoryStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
