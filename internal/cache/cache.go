// Package cache holds the Redis-backed state of the console: the user
// snapshot between reloads, per-admin preferences and revoked session ids.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/admin-console-api/internal/config"
)

const keyPrefix = "admin:"

// NewClient connects to Redis and verifies the connection
func NewClient(cfg *config.RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("component", "cache").Str("addr", cfg.Addr).Msg("Redis connection established")
	return rdb, nil
}

// Stores bundles the Redis-backed stores
type Stores struct {
	Snapshots   *SnapshotStore
	Preferences *PreferenceStore
	Revocations *RevocationStore
}

// NewStores builds every store on one client
func NewStores(rdb redis.Cmdable, snapshotTTL time.Duration) *Stores {
	return &Stores{
		Snapshots:   NewSnapshotStore(rdb, snapshotTTL),
		Preferences: NewPreferenceStore(rdb),
		Revocations: NewRevocationStore(rdb),
	}
}
