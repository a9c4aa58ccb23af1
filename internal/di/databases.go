package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/yieldwise/internal/config"
	"github.com/aristath/yieldwise/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens catalog.db, plus cache.db when the sqlite cache backend is selected
func InitializeDatabases(container *Container, cfg *config.Config, log zerolog.Logger) error {
	catalogDB, err := openDatabase(cfg.DataDir, database.NameCatalog, database.ProfileStandard)
	if err != nil {
		return err
	}
	container.CatalogDB = catalogDB
	container.onClose(catalogDB.Close)

	if cfg.Cache.Backend == config.CacheBackendSQLite {
		// Maximum speed for ephemeral data
		cacheDB, err := openDatabase(cfg.DataDir, database.NameCache, database.ProfileCache)
		if err != nil {
			return err
		}
		container.CacheDB = cacheDB
		container.onClose(cacheDB.Close)
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases initialized and schemas applied")
	return nil
}

func openDatabase(dataDir, name string, profile database.DatabaseProfile) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database: %w", name, err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema to %s: %w", name, err)
	}
	return db, nil
}
