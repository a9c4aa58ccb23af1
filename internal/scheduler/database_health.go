package scheduler

import (
	"context"
	"fmt"

	"github.com/aristath/yieldwise/internal/database"
	"github.com/rs/zerolog"
)

// walWarnFrames is the WAL size above which a checkpoint is reported as lagging
const walWarnFrames = 1000

// DatabaseHealthJob pings each database and runs a passive WAL checkpoint
type DatabaseHealthJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewDatabaseHealthJob creates a new DatabaseHealthJob. Nil databases are skipped.
func NewDatabaseHealthJob(log zerolog.Logger, databases ...*database.DB) *DatabaseHealthJob {
	return &DatabaseHealthJob{
		databases: databases,
		log:       log.With().Str("job", "database_health").Logger(),
	}
}

// Name returns the job name
func (j *DatabaseHealthJob) Name() string {
	return "database_health"
}

// Run executes the database health job
func (j *DatabaseHealthJob) Run(ctx context.Context) error {
	checked := 0
	for _, db := range j.databases {
		if db == nil {
			continue
		}

		if err := db.QuickCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Database health check failed")
			return fmt.Errorf("database %s unreachable: %w", db.Name(), err)
		}

		// PRAGMA wal_checkpoint returns: busy, log, checkpointed
		var busy, frames, checkpointed int
		err := db.Conn().QueryRowContext(ctx, "PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed)
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to check WAL checkpoint")
		} else if frames > walWarnFrames {
			j.log.Warn().
				Str("database", db.Name()).
				Int("wal_frames", frames).
				Int("checkpointed", checkpointed).
				Msg("WAL file is large, checkpoint may be needed")
		}

		checked++
	}

	j.log.Info().Int("checked", checked).Msg("Database health check completed")
	return nil
}
