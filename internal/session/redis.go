package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces session keys in Redis.
const KeyPrefix = "nuvei:session:"

// RedisStore shares tokens between processes through Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps client; ttl <= 0 means DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Dial connects to url, instruments the client for tracing and metrics and
// checks the connection.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("session: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session: instrument redis: %w", err)
	}
	if err := redisotel.InstrumentMetrics(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session: instrument redis metrics: %w", err)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session: ping redis: %w", err)
	}
	return client, nil
}

// Get returns the live token for key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.client == nil {
		return "", false, nil
	}
	token, err := s.client.Get(ctx, KeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return token, true, nil
}

// Set stores token for key with the store's TTL.
func (s *RedisStore) Set(ctx context.Context, key, token string) error {
	if s == nil || s.client == nil {
		return errors.New("session: redis client not configured")
	}
	return s.client.Set(ctx, KeyPrefix+key, token, s.ttl).Err()
}
