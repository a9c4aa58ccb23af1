package testing

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/aristath/yieldwise/internal/cache"
)

// ErrCacheDown is the default error returned by FailingStore
var ErrCacheDown = errors.New("cache backend down")

// FailingStore is a cache.Store whose every operation fails
type FailingStore struct {
	Err error // defaults to ErrCacheDown
}

func (s FailingStore) err() error {
	if s.Err != nil {
		return s.Err
	}
	return ErrCacheDown
}

// Get always fails
func (s FailingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, s.err()
}

// Set always fails
func (s FailingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.err()
}

// DeletePattern always fails
func (s FailingStore) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	return 0, s.err()
}

// Stats always fails
func (s FailingStore) Stats(ctx context.Context) (cache.Stats, error) {
	return cache.Stats{}, s.err()
}

// CountingStore records reads and writes made through a wrapped store
type CountingStore struct {
	cache.Store
	Gets    atomic.Int32
	Sets    atomic.Int32
	LastTTL atomic.Int64
	LastKey atomic.Value
}

// NewCountingStore wraps next
func NewCountingStore(next cache.Store) *CountingStore {
	return &CountingStore{Store: next}
}

// Get counts and delegates
func (s *CountingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.Gets.Add(1)
	return s.Store.Get(ctx, key)
}

// Set counts, remembers the key and TTL, and delegates
func (s *CountingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.Sets.Add(1)
	s.LastTTL.Store(int64(ttl))
	s.LastKey.Store(key)
	return s.Store.Set(ctx, key, value, ttl)
}
