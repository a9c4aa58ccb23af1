package cache

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 100

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dial, read and write. Zero uses the client defaults.
	Timeout time.Duration
}

// RedisStore is a Store backed by a shared Redis instance
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store. The connection is established
// lazily, so an unreachable server surfaces as errors on first use.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.Timeout > 0 {
		opts.DialTimeout = cfg.Timeout
		opts.ReadTimeout = cfg.Timeout
		opts.WriteTimeout = cfg.Timeout
	}

	return &RedisStore{client: redis.NewClient(opts)}
}

// Ping checks the server is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Get returns the value under key, translating redis.Nil into a miss
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores value under key with ttl (SET key value EX ttl)
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeletePattern walks the keyspace with SCAN MATCH and deletes matches in batches
func (s *RedisStore) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	var (
		deleted int64
		batch   []string
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.client.Del(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
		deleted += n
		batch = batch[:0]
		return nil
	}

	iter := s.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatchSize {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan %s: %w", pattern, err)
	}

	if err := flush(); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// Stats reads INFO and DBSIZE from the server
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	raw, err := s.client.Info(ctx).Result()
	if err != nil {
		return Stats{}, fmt.Errorf("redis info: %w", err)
	}

	stats := statsFromInfo(parseInfo(raw))

	if keys, err := s.client.DBSize(ctx).Result(); err == nil {
		stats.Keys = keys
	}

	return stats, nil
}

// parseInfo splits an INFO reply into its field:value pairs, skipping section headers
func parseInfo(raw string) map[string]string {
	fields := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[key] = value
	}

	return fields
}

func statsFromInfo(info map[string]string) Stats {
	asInt := func(key string) int64 {
		v, err := strconv.ParseInt(info[key], 10, 64)
		if err != nil {
			return 0
		}
		return v
	}

	usedMemory := info["used_memory_human"]
	if usedMemory == "" {
		usedMemory = "N/A"
	}

	hits, misses := asInt("keyspace_hits"), asInt("keyspace_misses")
	return Stats{
		Connected:        true,
		Backend:          BackendRedis,
		UsedMemory:       usedMemory,
		ConnectedClients: asInt("connected_clients"),
		KeyspaceHits:     hits,
		KeyspaceMisses:   misses,
		HitRate:          HitRate(hits, misses),
	}
}
