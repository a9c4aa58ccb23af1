package cache

import (
	"context"

	"github.com/rs/zerolog"
)

// Expirer is a store that keeps expired entries until told to drop them
type Expirer interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupJob removes expired analysis results from a persistent store.
// Backends with native expiry (memory, redis) don't need it.
type CleanupJob struct {
	store Expirer
	log   zerolog.Logger
}

// NewCleanupJob creates a new cache cleanup job.
func NewCleanupJob(store Expirer, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		store: store,
		log:   log.With().Str("job", "analysis_cache_cleanup").Logger(),
	}
}

// Run executes the cleanup job
func (j *CleanupJob) Run(ctx context.Context) error {
	deleted, err := j.store.DeleteExpired(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired analysis cache entries")
		return err
	}

	if deleted > 0 {
		j.log.Info().
			Int64("deleted", deleted).
			Msg("Cleaned up expired cache entries")
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "analysis_cache_cleanup"
}
