package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/database"
)

// Store is an opened document store with its repositories
type Store struct {
	*Repositories

	// Postgres is set only for the postgres driver; migrations run through it
	Postgres *database.DB

	health func(ctx context.Context) error
	close  func() error
}

// Open connects the driver selected by cfg.Driver. When migrate is set the
// postgres schema is brought up to date; sqlite is always auto-migrated.
func Open(cfg *config.DatabaseConfig, migrate bool, log zerolog.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := database.New(cfg, log)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Store{Repositories: New(db), Postgres: db, health: db.HealthCheck, close: db.Close}, nil

	case config.DriverSQLite:
		local, err := database.OpenLocal(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return &Store{Repositories: NewLocal(local), health: local.HealthCheck, close: local.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// HealthCheck pings the underlying database
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.health(ctx)
}

// Close releases the connection
func (s *Store) Close() error {
	return s.close()
}
