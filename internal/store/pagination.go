package store

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Page  int // 1-based page number (defaults to 1)
	Limit int // items per page (defaults to 20, capped at 100)
}

// PaginatedResult contains one page of data plus paging metadata.
type PaginatedResult[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// DefaultPaginationParams returns sensible defaults.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Page:  1,
		Limit: 20,
	}
}

// Validate checks and corrects pagination parameters.
func (p *PaginationParams) Validate() {
	if p.Page <= 0 {
		p.Page = 1
	}

	if p.Limit <= 0 {
		p.Limit = 20
	}

	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset returns the row offset of the current page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPaginatedResult assembles a result page, computing total_pages as
// ceil(total/limit). Zero matching rows means zero pages.
func NewPaginatedResult[T any](items []T, params PaginationParams, total int) *PaginatedResult[T] {
	totalPages := 0
	if params.Limit > 0 && total > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}

	if items == nil {
		items = []T{}
	}

	return &PaginatedResult[T]{
		Items:      items,
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
