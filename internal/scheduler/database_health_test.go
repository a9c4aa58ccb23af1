package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/yieldwise/internal/database"
	testingpkg "github.com/aristath/yieldwise/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseHealthJob_Healthy(t *testing.T) {
	catalog, _ := testingpkg.NewTestDB(t, database.NameCatalog)

	job := NewDatabaseHealthJob(zerolog.Nop(), catalog, nil)

	assert.Equal(t, "database_health", job.Name())
	assert.NoError(t, job.Run(context.Background()))
}

func TestDatabaseHealthJob_ClosedDatabase(t *testing.T) {
	catalog, cleanup := testingpkg.NewTestDB(t, database.NameCatalog)
	cleanup()

	job := NewDatabaseHealthJob(zerolog.Nop(), catalog)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")
}

func TestDatabaseHealthJob_Schedules(t *testing.T) {
	s := New(zerolog.Nop())
	catalog, _ := testingpkg.NewTestDB(t, database.NameCatalog)

	require.NoError(t, s.AddJob("@hourly", NewDatabaseHealthJob(zerolog.Nop(), catalog), time.Second))
	assert.Equal(t, 1, s.Entries())
}
