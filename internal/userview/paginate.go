package userview

// DefaultPageSize is the number of user cards per page.
const DefaultPageSize = 8

// Page is one visible window of a sequence.
type Page[T any] struct {
	Items        []T  `json:"items"`
	Page         int  `json:"page"`
	PageSize     int  `json:"pageSize"`
	Total        int  `json:"total"`
	TotalPages   int  `json:"totalPages"`
	HasPrev      bool `json:"hasPrev"`
	HasNext      bool `json:"hasNext"`
	ShowControls bool `json:"showControls"`
}

// TotalPages is ceil(total/size).
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Paginate returns items[(page-1)*size : page*size] clamped to the bounds.
// A page below 1 is read as 1; a page past the end is empty.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	pages := TotalPages(total, size)

	start := total
	if page <= pages {
		start = (page - 1) * size
	}
	end := start + size
	if end > total {
		end = total
	}

	window := make([]T, end-start)
	copy(window, items[start:end])

	return Page[T]{
		Items:        window,
		Page:         page,
		PageSize:     size,
		Total:        total,
		TotalPages:   pages,
		HasPrev:      page > 1,
		HasNext:      page < pages,
		ShowControls: pages > 1,
	}
}
