package api

import (
	"time"

	"github.com/admin-console-api/internal/models"
	"github.com/admin-console-api/internal/userview"
)

// userCard is a user as rendered on the users page
type userCard struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	Role        string    `json:"role"`
	InvitedAt   time.Time `json:"invitedAt"`
	AvatarColor string    `json:"avatarColor"`
	Initial     string    `json:"initial"`
}

func newUserCard(u models.User) userCard {
	return userCard{
		ID:          u.ID,
		Email:       u.Email,
		Status:      u.Status,
		Role:        u.EffectiveRole(),
		InvitedAt:   u.InvitedAt,
		AvatarColor: userview.AvatarColor(u.Email),
		Initial:     userview.Initial(u.Email),
	}
}

// queryEcho reports the selection a page was computed for
type queryEcho struct {
	Search    string             `json:"search"`
	Status    string             `json:"status"`
	Role      string             `json:"role"`
	Sort      string             `json:"sort,omitempty"`
	Direction userview.Direction `json:"direction"`
}

// userPage is the visible window of the users page
type userPage struct {
	Items        []userCard `json:"items"`
	Matched      int        `json:"matched"`
	Page         int        `json:"page"`
	PageSize     int        `json:"pageSize"`
	TotalPages   int        `json:"totalPages"`
	HasPrev      bool       `json:"hasPrev"`
	HasNext      bool       `json:"hasNext"`
	ShowControls bool       `json:"showControls"`
	Query        queryEcho  `json:"query"`
}

func newUserPage(q userview.Query, res userview.Result) userPage {
	cards := make([]userCard, len(res.Page.Items))
	for i, u := range res.Page.Items {
		cards[i] = newUserCard(u)
	}
	return userPage{
		Items:        cards,
		Matched:      len(res.Matched),
		Page:         res.Page.Page,
		PageSize:     res.Page.PageSize,
		TotalPages:   res.Page.TotalPages,
		HasPrev:      res.Page.HasPrev,
		HasNext:      res.Page.HasNext,
		ShowControls: res.Page.ShowControls,
		Query: queryEcho{
			Search:    q.Search,
			Status:    q.Status,
			Role:      q.Role,
			Sort:      q.Sort.Key,
			Direction: q.Sort.Direction,
		},
	}
}

// postCard is a content library entry
type postCard struct {
	*models.Post
	StatusLabel string   `json:"statusLabel"`
	Bodies      []string `json:"bodies"`
}

func newPostCard(p *models.Post) postCard {
	bodies := p.AvailableBodies()
	if bodies == nil {
		bodies = []string{}
	}
	return postCard{Post: p, StatusLabel: p.StatusLabel(), Bodies: bodies}
}
