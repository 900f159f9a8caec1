package common

import (
	"math"
	"net/http"
	"strconv"
)

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination fills TotalPages from total and perPage.
func NewPagination(page, perPage int, total int64) Pagination {
	p := Pagination{Page: page, PerPage: perPage, TotalItems: int(total)}
	if perPage > 0 {
		p.TotalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return p
}

// MaxPerPage caps the page size accepted from clients.
const MaxPerPage = 100

// MaxPage keeps (page-1)*MaxPerPage within an int32 OFFSET.
const MaxPage = math.MaxInt32/MaxPerPage + 1

// ClampPage bounds page and perPage to the ranges list queries accept.
func ClampPage(page, perPage int) (int, int) {
	return min(max(page, 1), MaxPage), min(perPage, MaxPerPage)
}

// ParsePagination extracts page and per-page parameters from query values.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	page, perPage = ClampPage(page, perPage)
	return
}
