package userview

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/admin-console-api/internal/models"
)

// Sort keys
const (
	KeyEmail     = "email"
	KeyStatus    = "status"
	KeyRole      = "role"
	KeyInvitedAt = "invitedAt"
)

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// ErrUnknownSortKey is returned for a key that is not a user field.
var ErrUnknownSortKey = errors.New("unknown sort key")

// ErrUnknownDirection is returned for anything but ascending or descending.
var ErrUnknownDirection = errors.New("unknown sort direction")

// SortConfig is the active sort selection. An empty Key means fetch order.
type SortConfig struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// RequestSort toggles direction when the same key is picked again while
// ascending; any other pick starts ascending.
func (s SortConfig) RequestSort(key string) SortConfig {
	if s.Key == key && s.Direction == Ascending {
		return SortConfig{Key: key, Direction: Descending}
	}
	return SortConfig{Key: key, Direction: Ascending}
}

// ParseDirection accepts the long names plus asc/desc; empty means ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "asc", string(Ascending):
		return Ascending, nil
	case "desc", string(Descending):
		return Descending, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// Comparator returns the ordering for key and direction.
func Comparator(key string, dir Direction) (func(a, b models.User) int, error) {
	var cmp func(a, b models.User) int
	switch key {
	case KeyInvitedAt:
		cmp = func(a, b models.User) int { return a.InvitedAt.Compare(b.InvitedAt) }
	case KeyEmail:
		cmp = stringKey(func(u models.User) string { return u.Email })
	case KeyStatus:
		cmp = stringKey(func(u models.User) string { return u.Status })
	case KeyRole:
		cmp = stringKey(func(u models.User) string { return u.Role })
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}

	switch dir {
	case Ascending:
		return cmp, nil
	case Descending:
		return func(a, b models.User) int { return cmp(b, a) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDirection, dir)
	}
}

func stringKey(field func(models.User) string) func(a, b models.User) int {
	return func(a, b models.User) int {
		return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

// Sort orders a copy of users. Equal keys keep their input order.
func Sort(users []models.User, cfg SortConfig) ([]models.User, error) {
	out := slices.Clone(users)
	if cfg.Key == "" {
		return out, nil
	}
	cmp, err := Comparator(cfg.Key, cfg.Direction)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, cmp)
	return out, nil
}
