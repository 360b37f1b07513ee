package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/admin-console-api/internal/models"
)

// LocalDB is the single-file SQLite store used for local runs
type LocalDB struct {
	*gorm.DB
	log zerolog.Logger
}

// OpenLocal opens (or creates) the SQLite file and migrates the schema.
// ":memory:" gives a throwaway database.
func OpenLocal(path string, log zerolog.Logger) (*LocalDB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows a single writer; an in-memory database must also stay on one connection
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&models.UserDocument{}, &models.Post{}, &models.LogEntry{}, &models.Account{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	local := &LocalDB{
		DB:  gdb,
		log: log.With().Str("component", "database").Logger(),
	}
	local.log.Info().Str("path", path).Msg("Local database ready")
	return local, nil
}

// HealthCheck verifies the database connection is healthy
func (l *LocalDB) HealthCheck(ctx context.Context) error {
	sqlDB, err := l.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection
func (l *LocalDB) Close() error {
	sqlDB, err := l.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
