package pagination

import "math"

// Page describes an offset page over a result set whose total is known.
type Page struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Normalize clamps page/limit: page is 1-based, limit falls back to def
// when non-positive and is capped at max (max <= 0 disables the cap).
func Normalize(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	return page, limit
}

// NewPage computes the page metadata. totalPages = ceil(total/limit).
func NewPage(page, limit int, total int64) Page {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Offset is the number of rows to skip for the page. It saturates at
// math.MaxInt instead of overflowing.
func (p Page) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Window returns the [start, end) bounds of the page inside a slice of n items.
func (p Page) Window(n int) (start, end int) {
	start = p.Offset()
	if start > n {
		start = n
	}
	end = n
	if p.Limit > 0 && n-start > p.Limit {
		end = start + p.Limit
	}
	return start, end
}
