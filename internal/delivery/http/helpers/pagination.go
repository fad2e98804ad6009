package helpers

import (
	"net/http"
	"net/url"
	"strconv"

	"campusengage/internal/domain"
)

// DefaultPage is used when the page query parameter is missing or invalid.
const DefaultPage = 1

// ParsePagination reads page and page_size from the query string. Missing or unparsable values
// fall back to the defaults; page_size is capped at domain.MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	return domain.PaginationParams{
		Page:     positiveQueryInt(q, "page", DefaultPage),
		PageSize: min(positiveQueryInt(q, "page_size", domain.DefaultPageSize), domain.MaxPageSize),
	}
}

func positiveQueryInt(q url.Values, key string, def int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// PageMeta describes a result page. TotalPages is 0 when the page size is 0.
func PageMeta[T any](p *domain.Page[T]) PaginationMeta {
	meta := PaginationMeta{Page: p.Page, PageSize: p.PageSize, Total: p.Total}
	if p.PageSize > 0 {
		meta.TotalPages = (p.Total + p.PageSize - 1) / p.PageSize
	}
	return meta
}
