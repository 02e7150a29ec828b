package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/yourorg/tag-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePremiumChecker struct {
	premium map[int64]bool
	calls   int
	err     error
}

func (f *fakePremiumChecker) IsPremiumUser(_ context.Context, userID int64) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.premium[userID], nil
}

func TestTierWindows(t *testing.T) {
	assert.Equal(t, 5*time.Second, Tier0.Window(false))
	assert.Equal(t, 2*time.Second, Tier0.Window(true))
	assert.Equal(t, 3600*time.Second, Tier1.Window(false))
	assert.Equal(t, 60*time.Second, Tier1.Window(true))
}

func TestParseTier(t *testing.T) {
	for _, s := range []string{"0", "level_0"} {
		tier, err := ParseTier(s)
		require.NoError(t, err)
		assert.Equal(t, Tier0, tier)
	}
	for _, s := range []string{"1", "level_1"} {
		tier, err := ParseTier(s)
		require.NoError(t, err)
		assert.Equal(t, Tier1, tier)
	}
	_, err := ParseTier("2")
	assert.Error(t, err)
}

func TestGateStandardCallerWindow(t *testing.T) {
	checker := &fakePremiumChecker{premium: map[int64]bool{}}
	gate := NewGate(checker, NewMemoryStore(), nil, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, gate.Check(ctx, 42, Tier0))

	err := gate.Check(ctx, 42, Tier0)
	rle, ok := model.IsRateLimited(err)
	require.True(t, ok, "second call inside the window must be rate limited")
	assert.Greater(t, rle.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, rle.RetryAfter, 5*time.Second)
}

func TestGatePremiumCallerGetsShortWindow(t *testing.T) {
	checker := &fakePremiumChecker{premium: map[int64]bool{42: true}}
	gate := NewGate(checker, NewMemoryStore(), nil, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, gate.Check(ctx, 42, Tier0))

	err := gate.Check(ctx, 42, Tier0)
	rle, ok := model.IsRateLimited(err)
	require.True(t, ok)
	assert.LessOrEqual(t, rle.RetryAfter, 2*time.Second)
}

func TestGateOwnerBypassesEntirely(t *testing.T) {
	checker := &fakePremiumChecker{premium: map[int64]bool{}}
	gate := NewGate(checker, NewMemoryStore(), nil, []int64{7}, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, gate.Check(ctx, 7, Tier1))
	}
	assert.Zero(t, checker.calls, "owner must not trigger a subscription lookup")
}

func TestGateTiersHaveSeparateBuckets(t *testing.T) {
	checker := &fakePremiumChecker{premium: map[int64]bool{}}
	gate := NewGate(checker, NewMemoryStore(), nil, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, gate.Check(ctx, 42, Tier0))
	require.NoError(t, gate.Check(ctx, 42, Tier1), "tier 1 bucket must be independent of tier 0")
}

func TestGateCachesPremiumLookup(t *testing.T) {
	checker := &fakePremiumChecker{premium: map[int64]bool{42: true}}
	cache := NewPremiumCache(nil, time.Minute)
	gate := NewGate(checker, NewMemoryStore(), cache, nil, zap.NewNop())
	ctx := context.Background()

	_ = gate.Check(ctx, 42, Tier0)
	_ = gate.Check(ctx, 42, Tier0)
	assert.Equal(t, 1, checker.calls, "second check must hit the cache")
}

func TestGateSurfacesCheckerErrors(t *testing.T) {
	checker := &fakePremiumChecker{err: model.ErrUnavailable}
	gate := NewGate(checker, NewMemoryStore(), nil, nil, zap.NewNop())

	err := gate.Check(context.Background(), 42, Tier0)
	assert.ErrorIs(t, err, model.ErrUnavailable)
}

func TestPremiumCacheExpiry(t *testing.T) {
	cache := NewPremiumCache(nil, 5*time.Millisecond)
	ctx := context.Background()

	cache.Put(ctx, 42, true)
	premium, ok := cache.Get(ctx, 42)
	require.True(t, ok)
	assert.True(t, premium)

	time.Sleep(10 * time.Millisecond)
	_, ok = cache.Get(ctx, 42)
	assert.False(t, ok, "entry must expire after the TTL")
}
