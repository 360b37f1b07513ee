// Package userview turns a fetched user list into the rows shown on the users
// page: filter, sort, then paginate.
package userview

import (
	"strings"
	"time"

	"github.com/admin-console-api/internal/models"
)

// Criteria holds the three independent filter selections.
type Criteria struct {
	Search string
	Status string
	Role   string
}

// MatchSearch is a case-insensitive substring match on the email only.
func MatchSearch(u models.User, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Email), strings.ToLower(search))
}

// MatchStatus requires exact equality unless the filter is "all" or empty.
func MatchStatus(u models.User, status string) bool {
	if status == "" || status == models.FilterAll {
		return true
	}
	return u.Status == status
}

// MatchRole behaves like MatchStatus with a missing role read as viewer.
func MatchRole(u models.User, role string) bool {
	if role == "" || role == models.FilterAll {
		return true
	}
	return u.EffectiveRole() == role
}

// Filter returns the users satisfying all three predicates, in input order.
func Filter(users []models.User, c Criteria) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if MatchSearch(u, c.Search) && MatchStatus(u, c.Status) && MatchRole(u, c.Role) {
			out = append(out, u)
		}
	}
	return out
}

// Normalize converts store documents into users, defaulting a missing
// invitedAt to now. Role defaults are left to the predicates and aggregation.
func Normalize(docs []models.UserDocument, now time.Time) []models.User {
	users := make([]models.User, len(docs))
	for i, d := range docs {
		invited := now
		if d.InvitedAt != nil {
			invited = *d.InvitedAt
		}
		users[i] = models.User{
			ID:        d.ID,
			Email:     d.Email,
			Status:    d.Status,
			Role:      d.Role,
			InvitedAt: invited,
		}
	}
	return users
}
