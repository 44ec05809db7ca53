package ports

import "math"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest is a 1-based page selector.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps the request to sane bounds. Page is capped so that Skip
// cannot overflow.
func (p PageRequest) Normalize() PageRequest {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if maxPage := math.MaxInt / p.Limit; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

// Skip is the number of rows before the first row of the page.
func (p PageRequest) Skip() int {
	return (p.Page - 1) * p.Limit
}

// Page is one slice of a listing plus the totals needed to navigate it.
type Page[T any] struct {
	Items      []T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// NewPage assembles a Page from a normalized request.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	pages := 0
	if req.Limit > 0 {
		pages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: req.Page, Limit: req.Limit, TotalPages: pages}
}
