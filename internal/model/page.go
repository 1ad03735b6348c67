package model

// PageInfo describes one page of a paginated listing.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPageInfo computes page metadata for a total row count.
func NewPageInfo(page, perPage, total int) PageInfo {
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: pages}
}
