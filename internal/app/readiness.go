package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// RedisPingResult is the minimal return type of a Redis client's Ping.
type RedisPingResult interface{ Err() error }

// RedisClient is the minimal interface for a Redis client needed for readiness.
type RedisClient interface {
	Ping(ctx context.Context) RedisPingResult
}

type goRedisClient struct{ c goredis.UniversalClient }

func (g goRedisClient) Ping(ctx context.Context) RedisPingResult { return g.c.Ping(ctx) }

// FromGoRedis adapts a go-redis client to RedisClient.
func FromGoRedis(c goredis.UniversalClient) RedisClient {
	if c == nil {
		return nil
	}
	return goRedisClient{c: c}
}

// BuildReadinessChecks returns the db and redis checks. A store that is not
// configured yields a nil check, which readiness skips.
func BuildReadinessChecks(pool Pinger, rdb RedisClient) (dbCheck, redisCheck func(ctx context.Context) error) {
	if pool != nil {
		dbCheck = func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("op=readiness.db: %w", err)
			}
			return nil
		}
	}
	if rdb != nil {
		redisCheck = func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("op=readiness.redis: %w", err)
			}
			return nil
		}
	}
	return dbCheck, redisCheck
}
