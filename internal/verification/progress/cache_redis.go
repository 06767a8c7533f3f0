package progress

import (
	"context"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"agrilink/internal/platform/redis"
)

const redisKeyPrefix = "verification:progress:"

// redisCacheTTL bounds staleness if an invalidation is ever lost.
const redisCacheTTL = 10 * time.Minute

// RedisCache shares computed progress across instances.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, subjectID string) (int, bool, error) {
	val, err := c.client.Get(ctx, redisKeyPrefix+subjectID).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	pct, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}
	return pct, true, nil
}

func (c *RedisCache) Set(ctx context.Context, subjectID string, pct int) error {
	return c.client.Set(ctx, redisKeyPrefix+subjectID, strconv.Itoa(pct), redisCacheTTL).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, subjectID string) error {
	return c.client.Del(ctx, redisKeyPrefix+subjectID).Err()
}
