package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/tag-service/internal/model"

	"go.uber.org/zap"
)

// Store reserves the single token of a (caller, tier) bucket. A zero
// retryAfter means the call is allowed; otherwise the caller must wait
// that long.
type Store interface {
	Reserve(ctx context.Context, key string, window time.Duration) (retryAfter time.Duration, err error)
}

// PremiumChecker is the point lookup against the subscription-status
// collaborator.
type PremiumChecker interface {
	IsPremiumUser(ctx context.Context, userID int64) (bool, error)
}

// Gate is the tiered per-caller limiter consulted before every externally
// invoked operation. Owner-equivalent callers bypass it entirely.
type Gate struct {
	subs   PremiumChecker
	store  Store
	cache  *PremiumCache
	owners map[int64]struct{}
	logger *zap.Logger
}

// NewGate creates a gate. cache may be nil to look premium status up on
// every invocation.
func NewGate(subs PremiumChecker, store Store, cache *PremiumCache, ownerIDs []int64, logger *zap.Logger) *Gate {
	owners := make(map[int64]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}
	return &Gate{
		subs:   subs,
		store:  store,
		cache:  cache,
		owners: owners,
		logger: logger,
	}
}

// Check consumes the caller's token for the tier. It returns nil when the
// call may proceed, a *model.RateLimitError when the window has not
// elapsed, or an infrastructure error from the store.
func (g *Gate) Check(ctx context.Context, callerID int64, tier Tier) error {
	if _, ok := g.owners[callerID]; ok {
		return nil
	}

	premium, err := g.premium(ctx, callerID)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("cooldown:%s:%d", tier, callerID)
	retryAfter, err := g.store.Reserve(ctx, key, tier.Window(premium))
	if err != nil {
		return err
	}
	if retryAfter > 0 {
		return &model.RateLimitError{RetryAfter: retryAfter}
	}
	return nil
}

func (g *Gate) premium(ctx context.Context, callerID int64) (bool, error) {
	if g.cache != nil {
		if premium, ok := g.cache.Get(ctx, callerID); ok {
			return premium, nil
		}
	}

	premium, err := g.subs.IsPremiumUser(ctx, callerID)
	if err != nil {
		return false, err
	}

	if g.cache != nil {
		g.cache.Put(ctx, callerID, premium)
	}
	return premium, nil
}
