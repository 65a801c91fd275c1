package balance

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "walletrace:v1:"

// RedisKV persists balances as decimal strings in Redis.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV builds a KV backed by the given Redis client.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Get reads the balance stored under key. A missing key is an unknown amount.
func (r *RedisKV) Get(ctx context.Context, key string) (Amount, error) {
	val, err := r.client.Get(ctx, redisPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return Unknown, nil
	}
	if err != nil {
		return Unknown, fmt.Errorf("redis get %s: %w", key, err)
	}
	v, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return Unknown, fmt.Errorf("decode balance %s: %w", key, err)
	}
	return Of(v), nil
}

// Put stores amount under key, or deletes the key for an unknown amount.
func (r *RedisKV) Put(ctx context.Context, key string, amount Amount) error {
	if !amount.Known {
		return r.client.Del(ctx, redisPrefix+key).Err()
	}
	return r.client.Set(ctx, redisPrefix+key, strconv.FormatInt(amount.Value, 10), 0).Err()
}
