package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreReserveSingleToken(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	window := 5 * time.Second

	retryAfter, err := s.Reserve(ctx, "k", window)
	require.NoError(t, err)
	assert.Zero(t, retryAfter, "first reservation must be allowed")

	retryAfter, err = s.Reserve(ctx, "k", window)
	require.NoError(t, err)
	assert.Greater(t, retryAfter, time.Duration(0), "second immediate reservation must wait")
	assert.LessOrEqual(t, retryAfter, window)
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	retryAfter, err := s.Reserve(ctx, "caller-1", 5*time.Second)
	require.NoError(t, err)
	assert.Zero(t, retryAfter)

	retryAfter, err = s.Reserve(ctx, "caller-2", 5*time.Second)
	require.NoError(t, err)
	assert.Zero(t, retryAfter, "another caller's bucket must be untouched")
}

func TestMemoryStoreWindowElapses(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	window := 20 * time.Millisecond

	_, err := s.Reserve(ctx, "k", window)
	require.NoError(t, err)

	time.Sleep(window + 5*time.Millisecond)

	retryAfter, err := s.Reserve(ctx, "k", window)
	require.NoError(t, err)
	assert.Zero(t, retryAfter, "call after the window must be allowed")
}

func TestMemoryStoreWindowChangeRebuildsBucket(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Reserve(ctx, "k", 3600*time.Second)
	require.NoError(t, err)

	// Subscription flipped: the shorter window takes effect immediately
	// instead of serving the rest of the hour-long cooldown.
	retryAfter, err := s.Reserve(ctx, "k", 60*time.Second)
	require.NoError(t, err)
	assert.Zero(t, retryAfter)
}

func TestMemoryStoreCleanupRemovesIdleEntries(t *testing.T) {
	s := NewMemoryStore(WithIdleTTL(2 * time.Millisecond))
	ctx := context.Background()

	_, err := s.Reserve(ctx, "k", time.Hour)
	require.NoError(t, err)

	time.Sleep(4 * time.Millisecond)
	s.Cleanup()

	// Entry was recreated, so the token is available again.
	retryAfter, err := s.Reserve(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.Zero(t, retryAfter)
}
