package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const fieldTheme = "theme"

// PreferenceStore keeps per-admin UI preferences in a Redis hash
type PreferenceStore struct {
	rdb redis.Cmdable
}

// NewPreferenceStore creates a preference store
func NewPreferenceStore(rdb redis.Cmdable) *PreferenceStore {
	return &PreferenceStore{rdb: rdb}
}

func prefsKey(email string) string {
	return keyPrefix + "prefs:" + strings.ToLower(strings.TrimSpace(email))
}

// GetTheme returns the saved theme, empty when none was saved
func (p *PreferenceStore) GetTheme(ctx context.Context, email string) (string, error) {
	theme, err := p.rdb.HGet(ctx, prefsKey(email), fieldTheme).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get theme: %w", err)
	}
	return theme, nil
}

// SetTheme saves the theme for an admin
func (p *PreferenceStore) SetTheme(ctx context.Context, email, theme string) error {
	if err := p.rdb.HSet(ctx, prefsKey(email), fieldTheme, theme).Err(); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}
