package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/yieldwise/internal/cache"
	"github.com/aristath/yieldwise/internal/config"
	"github.com/aristath/yieldwise/internal/modules/analysis"
	"github.com/aristath/yieldwise/internal/modules/properties"
	"github.com/rs/zerolog"
)

// MetricsNamespace prefixes every exported prometheus metric
const MetricsNamespace = "yieldwise"

// memoryCleanupInterval is how often go-cache sweeps expired entries
const memoryCleanupInterval = time.Minute

// InitializeCache builds the configured cache backend behind a circuit breaker
func InitializeCache(container *Container, cfg *config.Config, log zerolog.Logger) error {
	var backend cache.Store

	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		backend = cache.NewMemoryStore(memoryCleanupInterval)

	case config.CacheBackendRedis:
		redisStore := cache.NewRedisStore(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Timeout:  cfg.Cache.RedisTimeout,
		})
		container.onClose(redisStore.Close)

		// An unreachable redis is not fatal: the breaker trips and analyses run uncached
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisStore.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("Redis not reachable at startup")
		}
		cancel()
		backend = redisStore

	case config.CacheBackendSQLite:
		if container.CacheDB == nil {
			return fmt.Errorf("sqlite cache backend requires cache database")
		}
		backend = cache.NewSQLiteStore(container.CacheDB.Conn())

	default:
		return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	breaker := cache.DefaultBreakerConfig()
	if cfg.Cache.BreakerTimeout > 0 {
		breaker.OpenTimeout = cfg.Cache.BreakerTimeout
	}

	container.CacheBackend = cfg.Cache.Backend
	container.CacheStore = cache.NewResilientStore(backend, breaker, log)
	container.Metrics = cache.NewMetrics(MetricsNamespace)

	log.Info().
		Str("backend", cfg.Cache.Backend).
		Dur("ttl", cfg.Cache.AnalysisTTL).
		Msg("Analysis cache initialized")
	return nil
}

// InitializeServices builds repositories and services on top of databases and cache
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.CatalogDB == nil {
		return fmt.Errorf("catalog database not initialized")
	}
	if container.CacheStore == nil {
		return fmt.Errorf("cache not initialized")
	}

	container.PropertyRepo = properties.NewRepository(container.CatalogDB.Conn(), log)
	container.AnalysisService = analysis.NewService(container.CacheStore, cfg.Cache.AnalysisTTL, container.Metrics, log)
	container.PropertyService = properties.NewService(container.PropertyRepo, container.AnalysisService, log)

	return nil
}
