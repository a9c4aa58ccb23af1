// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/yieldwise/internal/cache"
	"github.com/aristath/yieldwise/internal/database"
	"github.com/aristath/yieldwise/internal/modules/analysis"
	"github.com/aristath/yieldwise/internal/modules/properties"
	"github.com/aristath/yieldwise/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire() and passed to the server and CLI.
type Container struct {
	// Databases
	CatalogDB *database.DB // Property catalogue read model
	CacheDB   *database.DB // Analysis cache, only opened for the sqlite backend

	// Cache
	CacheBackend string
	CacheStore   *cache.ResilientStore // Backend wrapped in the circuit breaker
	Metrics      *cache.Metrics

	// Repositories
	PropertyRepo *properties.Repository

	// Services
	AnalysisService *analysis.Service
	PropertyService *properties.Service

	// Background jobs
	Scheduler *scheduler.Scheduler

	closers []func() error
}

// Close stops background jobs and releases every backend the container opened
func (c *Container) Close() error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}

	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

func (c *Container) onClose(fn func() error) {
	c.closers = append(c.closers, fn)
}
