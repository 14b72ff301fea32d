package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// NewPagination derives page counts for a result window.
func NewPagination(page, perPage, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	pages := 0
	if total > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Pagination{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
}

// PageRequest is the page window embedded in every list filter.
type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize clamps the window to sane bounds.
func (p PageRequest) Normalize(defaultPerPage, maxPerPage int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = defaultPerPage
	}
	if maxPerPage > 0 && p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

// Offset returns the row offset of the window.
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}
