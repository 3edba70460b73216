package domain

// PaginationParams carries page/size values from the HTTP layer to the repo layer.
// Page is 1-indexed. Size is capped at 100 by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Size is the maximum number of items to return.
	Size int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to sane defaults (page=1, size=20).
// The size is capped at 100 to prevent runaway queries.
func NewPaginationParams(page, size *int) PaginationParams {
	p := PaginationParams{Page: 1, Size: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if size != nil && *size >= 1 {
		p.Size = *size
		if p.Size > 100 {
			p.Size = 100
		}
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Size
}

// Page is one page of results plus the totals the wire contract requires.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}

// NewPage assembles a Page from a result slice and the total row count.
// Content is never nil so it always serializes as a JSON array.
func NewPage[T any](content []T, total int64, params PaginationParams) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := int(total) / params.Size
	if int(total)%params.Size != 0 {
		pages++
	}
	return Page[T]{Content: content, TotalPages: pages, TotalElements: total}
}
