package utils

import (
	"math"

	"github.com/yukikurage/taskledger/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata shown with listings
type PaginationResponse struct {
	Page  int   `json:"page" yaml:"page"`
	Limit int   `json:"limit" yaml:"limit"`
	Total int64 `json:"total" yaml:"total"`
}

// NewPaginationParams clamps page and limit to the allowed range
func NewPaginationParams(page, limit int) PaginationParams {
	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	// keep the offset within int range
	if page-1 > math.MaxInt/limit {
		page = math.MaxInt/limit + 1
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Paginate returns the page of items selected by p.
func Paginate[T any](items []T, p PaginationParams) []T {
	if p.Offset < 0 || p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}

// Response builds the metadata for a listing of total items
func (p PaginationParams) Response(total int) PaginationResponse {
	return PaginationResponse{Page: p.Page, Limit: p.Limit, Total: int64(total)}
}
