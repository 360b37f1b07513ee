package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore caches a fetched collection until it expires or is invalidated.
// A zero TTL turns it into a no-op so every fetch reaches the store.
//
// Each collection carries a generation counter that Delete bumps. A reload
// reads the generation before querying the store and writes its snapshot only
// if the generation is still the same, so a slow reader cannot overwrite the
// snapshot of a later write.
type SnapshotStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewSnapshotStore creates a snapshot store
func NewSnapshotStore(rdb redis.Cmdable, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{rdb: rdb, ttl: ttl}
}

func snapshotKey(collection string) string {
	return keyPrefix + "snapshot:" + collection
}

func generationKey(collection string) string {
	return keyPrefix + "snapshot:" + collection + ":gen"
}

// setIfGeneration writes KEYS[1] with a PX ttl when KEYS[2] still holds ARGV[1]
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Enabled reports whether snapshots are kept at all
func (s *SnapshotStore) Enabled() bool {
	return s.ttl > 0
}

// Get decodes the cached collection into dst. It reports false on a miss.
func (s *SnapshotStore) Get(ctx context.Context, collection string, dst any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	data, err := s.rdb.Get(ctx, snapshotKey(collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get snapshot %s: %w", collection, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", collection, err)
	}
	return true, nil
}

// Generation returns the current generation of collection, 0 before the first
// Delete.
func (s *SnapshotStore) Generation(ctx context.Context, collection string) (int64, error) {
	gen, err := s.rdb.Get(ctx, generationKey(collection)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get snapshot generation %s: %w", collection, err)
	}
	return gen, nil
}

// Set stores v as the collection snapshot if the generation is still gen.
// It reports whether the snapshot was written.
func (s *SnapshotStore) Set(ctx context.Context, collection string, gen int64, v any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode snapshot %s: %w", collection, err)
	}
	stored, err := setIfGeneration.Run(ctx, s.rdb,
		[]string{snapshotKey(collection), generationKey(collection)},
		strconv.FormatInt(gen, 10), payload, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("set snapshot %s: %w", collection, err)
	}
	return stored == 1, nil
}

// Delete bumps the generation and drops the collection snapshot in one
// transaction
func (s *SnapshotStore) Delete(ctx context.Context, collection string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(collection))
		pipe.Del(ctx, snapshotKey(collection))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", collection, err)
	}
	return nil
}
