package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers signed-out token ids until the token would have expired anyway
type RevocationStore struct {
	rdb redis.Cmdable
	now func() time.Time
}

// NewRevocationStore creates a revocation store
func NewRevocationStore(rdb redis.Cmdable) *RevocationStore {
	return &RevocationStore{rdb: rdb, now: time.Now}
}

func revokedKey(jti string) string {
	return keyPrefix + "revoked:" + jti
}

// Revoke marks jti as signed out until expiresAt. Already expired ids are skipped.
func (r *RevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, revokedKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was signed out
func (r *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
