package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/aristath/yieldwise/internal/cache"
	"github.com/rs/zerolog"
)

// ErrNilProperty is returned when Analyze is called without a property
var ErrNilProperty = errors.New("property is required")

// Service runs analyses through the cache. Backend failures never reach
// the caller: reads fall back to computing, writes and invalidations are
// logged and dropped.
//
// Concurrent calls for the same key may both miss and both compute; the
// last write wins. Results are immutable values so this only costs time.
type Service struct {
	store   cache.Store
	ttl     time.Duration
	metrics *cache.Metrics
	log     zerolog.Logger
}

// NewService creates an analysis service. metrics may be nil.
func NewService(store cache.Store, ttl time.Duration, metrics *cache.Metrics, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		ttl:     ttl,
		metrics: metrics,
		log:     log.With().Str("service", "analysis").Logger(),
	}
}

// TTL returns how long results stay cached
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Analyze returns the metrics for prop. When params is nil the monthly
// rent is estimated from the property. With useCache a cached result for
// the same property and tracked parameters is returned as is, and a fresh
// result is stored for TTL.
func (s *Service) Analyze(ctx context.Context, prop Property, params *Params, useCache bool) (Result, error) {
	if prop == nil {
		return Result{}, ErrNilProperty
	}

	var p Params
	if params == nil {
		p = EstimateParams(prop)
	} else {
		p = *params
		if err := p.Validate(); err != nil {
			return Result{}, err
		}
	}

	key := CacheKey(prop.PropertyID(), p)

	if useCache {
		if result, ok := s.lookup(ctx, key, prop.PropertyID()); ok {
			return result, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	result := Calculate(prop.PropertyPrice(), p)
	s.metrics.Computed(time.Since(start))

	if useCache {
		s.save(ctx, key, prop.PropertyID(), result)
	}

	return result, nil
}

func (s *Service) lookup(ctx context.Context, key string, propertyID int64) (Result, bool) {
	data, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.metrics.Error(cache.OpGet)
		s.log.Warn().Err(err).Str("key", key).Msg("Cache get failed")
		return Result{}, false
	}
	if !found {
		s.metrics.Miss()
		return Result{}, false
	}

	result, err := decodeResult(data)
	if err != nil {
		s.metrics.Error(cache.OpGet)
		s.log.Warn().Err(err).Str("key", key).Msg("Discarding unreadable cached analysis")
		return Result{}, false
	}

	s.metrics.Hit()
	s.log.Debug().Int64("property_id", propertyID).Msg("Cache hit")
	return result, true
}

func (s *Service) save(ctx context.Context, key string, propertyID int64, result Result) {
	data, err := encodeResult(result)
	if err != nil {
		s.metrics.Error(cache.OpSet)
		s.log.Warn().Err(err).Str("key", key).Msg("Cache set failed")
		return
	}

	if err := s.store.Set(ctx, key, data, s.ttl); err != nil {
		s.metrics.Error(cache.OpSet)
		s.log.Warn().Err(err).Str("key", key).Msg("Cache set failed")
		return
	}

	s.log.Debug().Int64("property_id", propertyID).Msg("Cached analysis")
}

// InvalidateCache removes every cached analysis of a property.
// It reports false instead of failing when the backend errors.
func (s *Service) InvalidateCache(ctx context.Context, propertyID int64) bool {
	deleted, err := s.store.DeletePattern(ctx, InvalidationPattern(propertyID))
	if err != nil {
		s.metrics.Error(cache.OpDelete)
		s.log.Warn().Err(err).Int64("property_id", propertyID).Msg("Cache invalidation failed")
		return false
	}

	s.log.Info().
		Int64("property_id", propertyID).
		Int64("deleted", deleted).
		Msg("Invalidated cache for property")
	return true
}

// CacheStats reports backend counters, or a not-connected report carrying
// the error when the backend cannot be queried.
func (s *Service) CacheStats(ctx context.Context) cache.Stats {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		s.metrics.Error(cache.OpStats)
		s.log.Warn().Err(err).Msg("Could not get cache stats")
		return cache.NotConnected(stats.Backend, err)
	}
	return stats
}
