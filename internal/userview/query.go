package userview

import (
	"github.com/admin-console-api/internal/models"
)

// Query is the full users-page selection. Changing any filter goes through a
// setter so the page is explicitly reset to 1.
type Query struct {
	Criteria
	Sort     SortConfig
	Page     int
	PageSize int
}

// NewQuery returns the page-load defaults: no filters, fetch order, page 1.
func NewQuery(pageSize int) Query {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Query{
		Criteria: Criteria{Status: models.FilterAll, Role: models.FilterAll},
		Sort:     SortConfig{Direction: Ascending},
		Page:     1,
		PageSize: pageSize,
	}
}

// SetSearch changes the search term and resets the page.
func (q Query) SetSearch(search string) Query {
	q.Search = search
	q.Page = 1
	return q
}

// SetStatus changes the status filter and resets the page.
func (q Query) SetStatus(status string) Query {
	q.Status = status
	q.Page = 1
	return q
}

// SetRole changes the role filter and resets the page.
func (q Query) SetRole(role string) Query {
	q.Role = role
	q.Page = 1
	return q
}

// RequestSort applies the header-click toggle. The page is kept.
func (q Query) RequestSort(key string) Query {
	q.Sort = q.Sort.RequestSort(key)
	return q
}

// Result is the filtered and sorted sequence plus its visible window.
type Result struct {
	Matched []models.User
	Page    Page[models.User]
}

// Run executes filter, sort and paginate over users.
func (q Query) Run(users []models.User) (Result, error) {
	matched, err := q.Select(users)
	if err != nil {
		return Result{}, err
	}
	return Result{Matched: matched, Page: Paginate(matched, q.Page, q.PageSize)}, nil
}

// Select filters and sorts without paginating.
func (q Query) Select(users []models.User) ([]models.User, error) {
	return Sort(Filter(users, q.Criteria), q.Sort)
}
