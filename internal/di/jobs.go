package di

import (
	"fmt"
	"time"

	"github.com/aristath/yieldwise/internal/cache"
	"github.com/aristath/yieldwise/internal/config"
	"github.com/aristath/yieldwise/internal/scheduler"
	"github.com/rs/zerolog"
)

const (
	healthCheckTimeout = 30 * time.Second
	cleanupTimeout     = time.Minute
)

// RegisterJobs registers background maintenance jobs. The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	s := scheduler.New(log)

	health := scheduler.NewDatabaseHealthJob(log, container.CatalogDB, container.CacheDB)
	if err := s.AddJob(cfg.HealthCheckSchedule, health, healthCheckTimeout); err != nil {
		return fmt.Errorf("failed to register %s job: %w", health.Name(), err)
	}

	// Redis and go-cache expire entries themselves; only sqlite rows need sweeping
	if container.CacheDB != nil {
		cleanup := cache.NewCleanupJob(cache.NewSQLiteStore(container.CacheDB.Conn()), log)
		if err := s.AddJob(cfg.Cache.CleanupSchedule, cleanup, cleanupTimeout); err != nil {
			return fmt.Errorf("failed to register %s job: %w", cleanup.Name(), err)
		}
	}

	container.Scheduler = s
	return nil
}
