// Package kv abstracts the key-value backend behind the minimal
// primitive set the day-scoped store needs: scalar get/set/del/expire,
// sorted-set insert/rank/range/cardinality, and hash set/get-all.
package kv

import (
	"context"
	"time"
)

// Store is the backend contract. Sorted-set member ordering follows
// Redis semantics: ascending by score, ties broken by member bytes
// ascending. Each individual operation is atomic on the backend.
type Store interface {
	// Get returns the value for key, and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes the given keys. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error

	// Expire sets key's time to live.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// ZAdd inserts member with score into the sorted set at key,
	// updating the score if the member already exists.
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZRank returns the 0-based ascending rank of member, and false
	// when the member is not in the set.
	ZRank(ctx context.Context, key, member string) (int64, bool, error)

	// ZRange returns members between the 0-based indices start and stop
	// inclusive, ascending. Negative indices count from the end, -1
	// being the last member.
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// ZCard returns the cardinality of the sorted set at key.
	ZCard(ctx context.Context, key string) (int64, error)

	// HSet stores field=value in the hash at key.
	HSet(ctx context.Context, key, field, value string) error

	// HGetAll returns all fields of the hash at key. A missing key
	// yields an empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}
