package cache

import (
	"context"
	"fmt"
	"path"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory. It is the default backend for
// single-instance deployments and tests.
type MemoryStore struct {
	items  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryStore creates an in-process store. Expired entries are purged
// every cleanupInterval; lookups never return them either way.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		items: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Get returns a copy of the stored value
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	v, ok := s.items.Get(key)
	if !ok {
		s.misses.Add(1)
		return nil, false, nil
	}

	data, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("unexpected value type %T under %s", v, key)
	}

	s.hits.Add(1)
	return append([]byte(nil), data...), true, nil
}

// Set stores a copy of value for ttl
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	s.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// DeletePattern removes live keys matching pattern using shell glob rules
func (s *MemoryStore) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return 0, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var deleted int64
	for key := range s.items.Items() {
		if ok, _ := path.Match(pattern, key); ok {
			s.items.Delete(key)
			deleted++
		}
	}

	return deleted, nil
}

// Stats reports live key count, payload size and hit/miss counters
func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	items := s.items.Items()
	var size uint64
	for key, item := range items {
		size += uint64(len(key))
		if data, ok := item.Object.([]byte); ok {
			size += uint64(len(data))
		}
	}

	hits, misses := s.hits.Load(), s.misses.Load()
	return Stats{
		Connected:        true,
		Backend:          BackendMemory,
		UsedMemory:       humanize.Bytes(size),
		ConnectedClients: 1,
		Keys:             int64(len(items)),
		KeyspaceHits:     hits,
		KeyspaceMisses:   misses,
		HitRate:          HitRate(hits, misses),
	}, nil
}

// Flush removes every entry
func (s *MemoryStore) Flush() {
	s.items.Flush()
}
