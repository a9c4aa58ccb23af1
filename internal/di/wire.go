package di

import (
	"fmt"

	"github.com/aristath/yieldwise/internal/config"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Initialize databases
// 2. Initialize cache backend
// 3. Initialize repositories and services
// 4. Register jobs
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	steps := []struct {
		name string
		fn   func(*Container, *config.Config, zerolog.Logger) error
	}{
		{"databases", InitializeDatabases},
		{"cache", InitializeCache},
		{"services", InitializeServices},
		{"jobs", RegisterJobs},
	}

	for _, step := range steps {
		if err := step.fn(container, cfg, log); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, nil
}
