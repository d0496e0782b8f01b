package kv

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store with Redis-compatible semantics.
// It backs tests and standalone runs; production deployments use
// RedisStore.
type MemoryStore struct {
	mu        sync.Mutex
	strings   map[string]string
	zsets     map[string]map[string]float64 // key -> member -> score
	hashes    map[string]map[string]string
	deadlines map[string]time.Time
	clock     func() time.Time
}

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the time source used for expiry. Tests use this to
// advance time deterministically.
func WithClock(clock func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		strings:   make(map[string]string),
		zsets:     make(map[string]map[string]float64),
		hashes:    make(map[string]map[string]string),
		deadlines: make(map[string]time.Time),
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// purgeIfExpired drops key's data when its deadline has passed.
// Must be called with s.mu held.
func (s *MemoryStore) purgeIfExpired(key string) {
	deadline, ok := s.deadlines[key]
	if !ok || s.clock().Before(deadline) {
		return
	}
	delete(s.strings, key)
	delete(s.zsets, key)
	delete(s.hashes, key)
	delete(s.deadlines, key)
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeIfExpired(key)
	val, ok := s.strings[key]
	return val, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.strings[key] = value
	if ttl > 0 {
		s.deadlines[key] = s.clock().Add(ttl)
	} else {
		delete(s.deadlines, key)
	}
	return nil
}

func (s *MemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.strings, key)
		delete(s.zsets, key)
		delete(s.hashes, key)
		delete(s.deadlines, key)
	}
	return nil
}

func (s *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeIfExpired(key)
	if s.exists(key) && ttl > 0 {
		s.deadlines[key] = s.clock().Add(ttl)
	}
	return nil
}

// exists reports whether key holds any data. Must be called with s.mu held.
func (s *MemoryStore) exists(key string) bool {
	if _, ok := s.strings[key]; ok {
		return true
	}
	if _, ok := s.zsets[key]; ok {
		return true
	}
	_, ok := s.hashes[key]
	return ok
}

func (s *MemoryStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeIfExpired(key)
	set, ok := s.zsets[key]
	if !ok {
		set = make(map[string]float64)
		s.zsets[key] = set
	}
	set[member] = score
	return nil
}

// sortedMembers returns key's members ascending by (score, member).
// Must be called with s.mu held.
func (s *MemoryStore) sortedMembers(key string) []string {
	set := s.zsets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		si, sj := set[members[i]], set[members[j]]
		if si != sj {
			return si < sj
		}
		return members[i] < members[j]
	})
	return members
}

func (s *MemoryStore) ZRank(ctx context.Context, key, member string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeIfExpired(key)
	if _, ok := s.zsets[key][member]; !ok {
		return 0, false, nil
	}
	for i, m := range s.sortedMembers(key) {
		if m == member {
			return int64(i), true, nil
		}
	}
	return 0, false, nil
}

func (s *MemoryStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeIfExpired(key)
	members := s.sortedMembers(key)
	n := int64(len(members))

	// Redis index semantics: negatives count from the end.
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return nil, nil
	}
	return members[start : stop+1], nil
}

func (s *MemoryStore) ZCard(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeIfExpired(key)
	return int64(len(s.zsets[key])), nil
}

func (s *MemoryStore) HSet(ctx context.Context, key, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeIfExpired(key)
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string)
		s.hashes[key] = h
	}
	h[field] = value
	return nil
}

func (s *MemoryStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeIfExpired(key)
	out := make(map[string]string, len(s.hashes[key]))
	for f, v := range s.hashes[key] {
		out[f] = v
	}
	return out, nil
}
