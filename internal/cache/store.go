// Package cache provides the key/value stores that hold serialized analysis
// results. Every backend satisfies Store so callers never see backend-specific
// errors such as redis.Nil or sql.ErrNoRows.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Backend names reported in Stats
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// ErrUnavailable is returned when the backend is known to be down and the
// call was rejected without touching it.
var ErrUnavailable = errors.New("cache backend unavailable")

// Store is the capability the analysis layer needs from a cache backend.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key. A missing or expired key
	// reports found=false with a nil error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set stores value under key for ttl. Last writer wins.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePattern removes every key matching a glob pattern ("analysis:42:*")
	// and returns how many were removed.
	DeletePattern(ctx context.Context, pattern string) (int64, error)
	// Stats reports backend-level counters.
	Stats(ctx context.Context) (Stats, error)
}

// Stats holds backend-level observability counters
type Stats struct {
	Connected        bool    `json:"connected"`
	Backend          string  `json:"backend,omitempty"`
	UsedMemory       string  `json:"used_memory,omitempty"`
	ConnectedClients int64   `json:"connected_clients"`
	Keys             int64   `json:"keys"`
	KeyspaceHits     int64   `json:"keyspace_hits"`
	KeyspaceMisses   int64   `json:"keyspace_misses"`
	HitRate          float64 `json:"hit_rate"`
	Error            string  `json:"error,omitempty"`
}

// NotConnected builds the stats reported when the backend could not be queried
func NotConnected(backend string, err error) Stats {
	s := Stats{Connected: false, Backend: backend}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// MarshalJSON emits only the connection fields when the backend is down,
// so callers never mistake zeroed counters for real ones.
func (s Stats) MarshalJSON() ([]byte, error) {
	if !s.Connected {
		return json.Marshal(struct {
			Connected bool   `json:"connected"`
			Backend   string `json:"backend,omitempty"`
			Error     string `json:"error,omitempty"`
		}{s.Connected, s.Backend, s.Error})
	}

	type plain Stats
	return json.Marshal(plain(s))
}

// HitRate returns hits as a percentage of all lookups
func HitRate(hits, misses int64) float64 {
	total := hits + misses
	if total < 1 {
		total = 1
	}
	return float64(hits) / float64(total) * 100
}
