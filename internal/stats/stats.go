// Package stats computes the dashboard counters and insights from a user list.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/admin-console-api/internal/models"
)

// NotAvailable is shown when there is no role to report.
const NotAvailable = "N/A"

// Slice is one pie-chart segment.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// WeekBucket counts invites in the calendar week starting on Date (a Sunday).
type WeekBucket struct {
	Date     string `json:"date"`
	NewUsers int    `json:"newUsers"`
}

// RoleCount keeps the role histogram in first-encountered order.
type RoleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// Summary is everything the dashboard renders.
type Summary struct {
	TotalUsers    int `json:"totalUsers"`
	ApprovedUsers int `json:"approvedUsers"`
	PendingUsers  int `json:"pendingUsers"`
	RevokedUsers  int `json:"revokedUsers"`

	Roles  []RoleCount  `json:"roles"`
	Weekly []WeekBucket `json:"newUsersOverTime"`

	ApprovalRate              float64 `json:"approvalRate"`
	ApprovalRateLabel         string  `json:"approvalRateLabel"`
	MostCommonRole            string  `json:"mostCommonRole"`
	AverageWeeklySignups      float64 `json:"averageWeeklySignups"`
	AverageWeeklySignupsLabel string  `json:"averageWeeklySignupsLabel"`

	StatusSlices []Slice `json:"statusSlices"`
	RoleSlices   []Slice `json:"roleSlices"`
}

// Summarize aggregates users. Weeks are computed from each invite's calendar
// date in loc and keyed in the same zone.
func Summarize(users []models.User, loc *time.Location) Summary {
	if loc == nil {
		loc = time.Local
	}

	s := Summary{TotalUsers: len(users), Roles: []RoleCount{}}
	roleIndex := map[string]int{}
	weekly := map[string]int{}

	for _, u := range users {
		switch u.Status {
		case models.StatusApproved:
			s.ApprovedUsers++
		case models.StatusPending:
			s.PendingUsers++
		case models.StatusRevoked:
			s.RevokedUsers++
		}

		role := u.EffectiveRole()
		if i, ok := roleIndex[role]; ok {
			s.Roles[i].Count++
		} else {
			roleIndex[role] = len(s.Roles)
			s.Roles = append(s.Roles, RoleCount{Role: role, Count: 1})
		}

		weekly[WeekKey(u.InvitedAt, loc)]++
	}

	keys := make([]string, 0, len(weekly))
	for k := range weekly {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s.Weekly = make([]WeekBucket, len(keys))
	for i, k := range keys {
		s.Weekly[i] = WeekBucket{Date: k, NewUsers: weekly[k]}
	}

	s.ApprovalRate = ApprovalRate(s.ApprovedUsers, s.TotalUsers)
	s.ApprovalRateLabel = ApprovalRateLabel(s.ApprovedUsers, s.TotalUsers)
	s.MostCommonRole = MostCommonRole(s.Roles)
	s.AverageWeeklySignups = AverageWeeklySignups(s.Weekly)
	s.AverageWeeklySignupsLabel = fmt.Sprintf("%.1f", s.AverageWeeklySignups)
	if len(s.Weekly) == 0 {
		s.AverageWeeklySignupsLabel = "0"
	}

	s.StatusSlices = []Slice{
		{Name: "Approved", Value: s.ApprovedUsers},
		{Name: "Pending", Value: s.PendingUsers},
		{Name: "Revoked", Value: s.RevokedUsers},
	}
	s.RoleSlices = make([]Slice, len(s.Roles))
	for i, r := range s.Roles {
		s.RoleSlices[i] = Slice{Name: Capitalize(r.Role), Value: r.Count}
	}
	return s
}

// WeekStart is local midnight of the Sunday on or before t's date in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d-int(local.Weekday()), 0, 0, 0, 0, loc)
}

// WeekKey formats WeekStart as YYYY-MM-DD.
func WeekKey(t time.Time, loc *time.Location) string {
	return WeekStart(t, loc).Format("2006-01-02")
}

// ApprovalRate is approved/total, 0 when there are no users.
func ApprovalRate(approved, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(approved) / float64(total)
}

// ApprovalRateLabel renders the rate as a percentage with one decimal.
func ApprovalRateLabel(approved, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", ApprovalRate(approved, total)*100)
}

// MostCommonRole is the arg-max of the histogram; ties go to the role seen first.
func MostCommonRole(roles []RoleCount) string {
	best, top := NotAvailable, 0
	for _, r := range roles {
		if r.Count > top {
			best, top = Capitalize(r.Role), r.Count
		}
	}
	return best
}

// AverageWeeklySignups divides all invites by the number of non-empty weeks.
func AverageWeeklySignups(weeks []WeekBucket) float64 {
	if len(weeks) == 0 {
		return 0
	}
	total := 0
	for _, w := range weeks {
		total += w.NewUsers
	}
	return float64(total) / float64(len(weeks))
}

// Capitalize upper-cases the first byte, matching role display names.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
