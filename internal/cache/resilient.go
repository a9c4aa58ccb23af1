package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// BreakerConfig controls when the circuit opens and how long it stays open
type BreakerConfig struct {
	Name string
	// FailureThreshold is the number of consecutive backend failures that opens the circuit
	FailureThreshold uint32
	// OpenTimeout is how long calls are rejected before a probe is let through
	OpenTimeout time.Duration
}

// DefaultBreakerConfig returns the settings used by the server
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "analysis-cache",
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// ResilientStore wraps a Store in a circuit breaker. Once the backend has
// failed FailureThreshold times in a row, calls fail fast with ErrUnavailable
// until OpenTimeout passes. Calls are never retried.
type ResilientStore struct {
	next    Store
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewResilientStore wraps next with a circuit breaker
func NewResilientStore(next Store, cfg BreakerConfig, log zerolog.Logger) *ResilientStore {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	s := &ResilientStore{
		next: next,
		log:  log.With().Str("component", "cache_breaker").Str("breaker", cfg.Name).Logger(),
	}

	threshold := cfg.FailureThreshold
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Cache circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up says nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return s
}

// State returns the breaker state ("closed", "half-open", "open")
func (s *ResilientStore) State() string {
	return s.breaker.State().String()
}

func (s *ResilientStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := s.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result, err
}

type getResult struct {
	data  []byte
	found bool
}

// Get reads through the breaker
func (s *ResilientStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := s.execute(func() (interface{}, error) {
		data, found, err := s.next.Get(ctx, key)
		return getResult{data: data, found: found}, err
	})
	if err != nil {
		return nil, false, err
	}

	r := res.(getResult)
	return r.data, r.found, nil
}

// Set writes through the breaker
func (s *ResilientStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.next.Set(ctx, key, value, ttl)
	})
	return err
}

// DeletePattern deletes through the breaker
func (s *ResilientStore) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	res, err := s.execute(func() (interface{}, error) {
		return s.next.DeletePattern(ctx, pattern)
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// Stats queries the wrapped store through the breaker
func (s *ResilientStore) Stats(ctx context.Context) (Stats, error) {
	res, err := s.execute(func() (interface{}, error) {
		return s.next.Stats(ctx)
	})
	if err != nil {
		return Stats{}, err
	}
	return res.(Stats), nil
}
