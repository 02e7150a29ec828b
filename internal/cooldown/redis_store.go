package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/tag-service/internal/model"

	"github.com/go-redis/redis/v8"
)

// reserveScript reserves the single token of a window atomically. It
// returns the remaining window in milliseconds when the caller is still
// cooling down, or 0 after placing the reservation.
var reserveScript = redis.NewScript(`
	local pttl = redis.call('PTTL', KEYS[1])
	if pttl > 0 then
		return pttl
	end
	redis.call('SET', KEYS[1], 1, 'PX', ARGV[1])
	return 0
`)

// RedisStore keys cooldown windows in redis so the gate stays correct
// across multiple service instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Reserve implements Store.
func (s *RedisStore) Reserve(ctx context.Context, key string, window time.Duration) (time.Duration, error) {
	res, err := reserveScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: cooldown store: %v", model.ErrUnavailable, err)
	}
	if res > 0 {
		return time.Duration(res) * time.Millisecond, nil
	}
	return 0, nil
}
