package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin-console-api/internal/cache"
	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/models"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestNewClient(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())

	rdb, err := cache.NewClient(&config.RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	defer rdb.Close()

	mr.Close()
	_, err = cache.NewClient(&config.RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSnapshotStore_RoundTripAndExpiry(t *testing.T) {
	mr, rdb := newRedis(t)
	store := cache.NewSnapshotStore(rdb, 30*time.Second)
	ctx := context.Background()

	var got []models.User
	hit, err := store.Get(ctx, "users", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	invited := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	users := []models.User{{ID: "1", Email: "a@example.com", Status: models.StatusPending, Role: models.RoleViewer, InvitedAt: invited}}
	stored, err := store.Set(ctx, "users", 0, users)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.True(t, mr.Exists("admin:snapshot:users"))

	hit, err = store.Get(ctx, "users", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got, 1)
	assert.Equal(t, "a@example.com", got[0].Email)
	assert.True(t, invited.Equal(got[0].InvitedAt))

	mr.FastForward(31 * time.Second)
	hit, err = store.Get(ctx, "users", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSnapshotStore_Delete(t *testing.T) {
	mr, rdb := newRedis(t)
	store := cache.NewSnapshotStore(rdb, time.Minute)
	ctx := context.Background()

	_, err := store.Set(ctx, "users", 0, []models.User{{ID: "1"}})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "users"))
	assert.False(t, mr.Exists("admin:snapshot:users"))

	// Deleting a missing snapshot is fine
	assert.NoError(t, store.Delete(ctx, "users"))

	gen, err := store.Generation(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
}

func TestSnapshotStore_StaleGenerationIsSkipped(t *testing.T) {
	mr, rdb := newRedis(t)
	store := cache.NewSnapshotStore(rdb, time.Minute)
	ctx := context.Background()

	gen, err := store.Generation(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	// A write lands between the read of the generation and the snapshot write
	require.NoError(t, store.Delete(ctx, "users"))

	stored, err := store.Set(ctx, "users", gen, []models.User{{ID: "old"}})
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists("admin:snapshot:users"))

	current, err := store.Generation(ctx, "users")
	require.NoError(t, err)
	stored, err = store.Set(ctx, "users", current, []models.User{{ID: "new"}})
	require.NoError(t, err)
	assert.True(t, stored)

	var got []models.User
	hit, err := store.Get(ctx, "users", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "new", got[0].ID)
	assert.InDelta(t, time.Minute.Seconds(), mr.TTL("admin:snapshot:users").Seconds(), 1)
}

func TestSnapshotStore_ZeroTTLDisables(t *testing.T) {
	mr, rdb := newRedis(t)
	store := cache.NewSnapshotStore(rdb, 0)
	ctx := context.Background()

	assert.False(t, store.Enabled())
	stored, err := store.Set(ctx, "users", 0, []models.User{{ID: "1"}})
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists("admin:snapshot:users"))

	var got []models.User
	hit, err := store.Get(ctx, "users", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSnapshotStore_CorruptPayload(t *testing.T) {
	mr, rdb := newRedis(t)
	store := cache.NewSnapshotStore(rdb, time.Minute)
	require.NoError(t, mr.Set("admin:snapshot:users", "{not json"))

	var got []models.User
	hit, err := store.Get(context.Background(), "users", &got)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestPreferenceStore(t *testing.T) {
	mr, rdb := newRedis(t)
	prefs := cache.NewPreferenceStore(rdb)
	ctx := context.Background()

	theme, err := prefs.GetTheme(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "", theme)

	require.NoError(t, prefs.SetTheme(ctx, "Admin@Example.com", "oceanic"))
	assert.Equal(t, "oceanic", mr.HGet("admin:prefs:admin@example.com", "theme"))

	theme, err = prefs.GetTheme(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "oceanic", theme)
}

func TestRevocationStore(t *testing.T) {
	mr, rdb := newRedis(t)
	revoked := cache.NewRevocationStore(rdb)
	ctx := context.Background()

	ok, err := revoked.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, revoked.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	ok, err = revoked.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Past expiry is not stored
	require.NoError(t, revoked.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("admin:revoked:jti-2"))

	mr.FastForward(2 * time.Hour)
	ok, err = revoked.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewStores(t *testing.T) {
	_, rdb := newRedis(t)
	stores := cache.NewStores(rdb, time.Second)
	assert.NotNil(t, stores.Snapshots)
	assert.NotNil(t, stores.Preferences)
	assert.NotNil(t, stores.Revocations)
	assert.True(t, stores.Snapshots.Enabled())
}
