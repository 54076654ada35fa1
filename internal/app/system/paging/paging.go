// Package paging implements offset pagination for the list endpoints:
// query-parameter parsing and the response envelope with next/prev links.
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

const (
	// DefaultPageSize is used when the client omits page_size.
	DefaultPageSize = 10

	// MaxPageSize caps page_size; larger requests fall back to the default.
	MaxPageSize = 100
)

// Params are the normalized pagination inputs for a list query.
type Params struct {
	Page     int64
	PageSize int64
	Search   string
}

// FromRequest reads page, page_size, and search from the request query.
// Missing or out-of-range values fall back to the defaults rather than
// erroring, so a mangled link still renders the first page.
func FromRequest(r *http.Request) Params {
	p := Params{Page: 1, PageSize: DefaultPageSize, Search: query.Get(r, "search")}
	if v := query.Get(r, "page"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := query.Get(r, "page_size"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n <= MaxPageSize {
			p.PageSize = n
		}
	}
	return p
}

// Skip is the number of documents to skip to reach the current page.
func (p Params) Skip() int64 {
	return (p.Page - 1) * p.PageSize
}

// Pagination is the metadata block attached to every list response.
// NextPage and PrevPage are null at the ends of the collection.
type Pagination struct {
	TotalItems  int64   `json:"total_items"`
	TotalPages  int64   `json:"total_pages"`
	CurrentPage int64   `json:"current_page"`
	PageSize    int64   `json:"page_size"`
	NextPage    *int64  `json:"next_page"`
	PrevPage    *int64  `json:"prev_page"`
	SearchTerm  *string `json:"search_term"`
}

// Envelope is the list response body: one page of items plus metadata.
type Envelope struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewEnvelope wraps a page of items with pagination metadata computed
// from the request params and the total match count.
func NewEnvelope(data any, p Params, total int64) Envelope {
	meta := Pagination{
		TotalItems:  total,
		TotalPages:  (total + p.PageSize - 1) / p.PageSize,
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
	}
	if p.Skip()+p.PageSize < total {
		next := p.Page + 1
		meta.NextPage = &next
	}
	if p.Page > 1 {
		prev := p.Page - 1
		meta.PrevPage = &prev
	}
	if p.Search != "" {
		meta.SearchTerm = &p.Search
	}
	return Envelope{Data: data, Pagination: meta}
}
