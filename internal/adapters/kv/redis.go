package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/crypticsea/dungeond/pkg/metrics"
)

// RedisStore implements Store on a Redis backend. Sorted-set atomicity
// (insert-with-rank) comes from Redis itself; no application-level
// locking is involved.
type RedisStore struct {
	client *redis.Client
}

// RedisOption applies a configuration option to the RedisStore.
type RedisOption func(*redis.Options)

// WithPassword sets the connection password.
func WithPassword(password string) RedisOption {
	return func(o *redis.Options) {
		o.Password = password
	}
}

// WithDB selects the logical database.
func WithDB(db int) RedisOption {
	return func(o *redis.Options) {
		o.DB = db
	}
}

// NewRedisStore connects to the Redis instance at addr.
func NewRedisStore(addr string, opts ...RedisOption) *RedisStore {
	options := &redis.Options{Addr: addr}
	for _, opt := range opts {
		opt(options)
	}
	return &RedisStore{client: redis.NewClient(options)}
}

// Ping verifies connectivity to the backend.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the client's connections.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func observe(op string, start time.Time, err error) {
	metrics.RecordKVOpLatency(op, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordKVError(op)
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		observe("get", start, nil)
		return "", false, nil
	}
	observe("get", start, err)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	start := time.Now()
	err := s.client.Set(ctx, key, value, ttl).Err()
	observe("set", start, err)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := s.client.Del(ctx, keys...).Err()
	observe("del", start, err)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	start := time.Now()
	err := s.client.Expire(ctx, key, ttl).Err()
	observe("expire", start, err)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	start := time.Now()
	err := s.client.ZAdd(ctx, key, &redis.Z{Score: score, Member: member}).Err()
	observe("zadd", start, err)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) ZRank(ctx context.Context, key, member string) (int64, bool, error) {
	start := time.Now()
	rank, err := s.client.ZRank(ctx, key, member).Result()
	if err == redis.Nil {
		observe("zrank", start, nil)
		return 0, false, nil
	}
	observe("zrank", start, err)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return rank, true, nil
}

func (s *RedisStore) ZRange(ctx context.Context, key string, startIdx, stopIdx int64) ([]string, error) {
	start := time.Now()
	members, err := s.client.ZRange(ctx, key, startIdx, stopIdx).Result()
	observe("zrange", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return members, nil
}

func (s *RedisStore) ZCard(ctx context.Context, key string) (int64, error) {
	start := time.Now()
	n, err := s.client.ZCard(ctx, key).Result()
	observe("zcard", start, err)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n, nil
}

func (s *RedisStore) HSet(ctx context.Context, key, field, value string) error {
	start := time.Now()
	err := s.client.HSet(ctx, key, field, value).Err()
	observe("hset", start, err)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	start := time.Now()
	fields, err := s.client.HGetAll(ctx, key).Result()
	observe("hgetall", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fields, nil
}
