package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:"

// consumeScript deletes the key iff its value equals the submitted code.
// Running as a script keeps compare-and-delete atomic per key.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps outstanding codes in Redis with native expiry, shared
// across replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a redis-backed store with the given code lifetime.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Put stores code for email, replacing any outstanding entry and arming the TTL.
func (s *RedisStore) Put(ctx context.Context, email, code string) error {
	if err := s.client.Set(ctx, keyPrefix+email, code, s.ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Consume deletes and acknowledges the entry iff code matches.
func (s *RedisStore) Consume(ctx context.Context, email, code string) (bool, error) {
	deleted, err := consumeScript.Run(ctx, s.client, []string{keyPrefix + email}, code).Int()
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return deleted == 1, nil
}
