package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// SQLiteStore persists entries in the analysis_cache table of the cache
// database, so results survive restarts. Expired rows are invisible to Get
// and removed by DeleteExpired.
type SQLiteStore struct {
	db     *sql.DB
	now    func() time.Time
	hits   atomic.Int64
	misses atomic.Int64
}

// NewSQLiteStore creates a store over a migrated cache database
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Get returns data only if expires_at > now
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM analysis_cache WHERE cache_key = ? AND expires_at > ?",
		key, s.now().Unix(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		s.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s from analysis_cache: %w", key, err)
	}

	s.hits.Add(1)
	return data, true, nil
}

// Set saves data with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert data.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := s.now().Add(ttl).Unix()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO analysis_cache (cache_key, data, expires_at) VALUES (?, ?, ?)",
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store %s in analysis_cache: %w", key, err)
	}
	return nil
}

// DeletePattern removes keys matching a GLOB pattern
func (s *SQLiteStore) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM analysis_cache WHERE cache_key GLOB ?", pattern)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s from analysis_cache: %w", pattern, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// DeleteExpired removes all rows where expires_at <= now.
// Returns the number of rows deleted.
func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM analysis_cache WHERE expires_at <= ?", s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired analysis_cache rows: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Stats counts live rows and their payload size
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var keys, size int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(cache_key) + LENGTH(data)), 0) FROM analysis_cache WHERE expires_at > ?",
		s.now().Unix(),
	).Scan(&keys, &size)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read analysis_cache stats: %w", err)
	}

	hits, misses := s.hits.Load(), s.misses.Load()
	return Stats{
		Connected:        true,
		Backend:          BackendSQLite,
		UsedMemory:       humanize.Bytes(uint64(size)),
		ConnectedClients: int64(s.db.Stats().OpenConnections),
		Keys:             keys,
		KeyspaceHits:     hits,
		KeyspaceMisses:   misses,
		HitRate:          HitRate(hits, misses),
	}, nil
}
