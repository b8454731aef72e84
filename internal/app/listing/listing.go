// Package listing filters and paginates result sets that are already held
// in memory.
package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// All disables an enum filter.
const All = "All"

// DefaultPageSize is the number of rows shown before the user picks another size.
const DefaultPageSize = 10

// PageSizeOptions are the allowed rows-per-page values.
var PageSizeOptions = []int{10, 25, 100}

// MatchOption reports whether value satisfies an enum filter. An empty
// filter or All matches everything.
func MatchOption(filter, value string) bool {
	if filter == "" || filter == All {
		return true
	}
	return filter == value
}

// OrAll returns v, or All when v is empty.
func OrAll(v string) string {
	if v == "" {
		return All
	}
	return v
}

// MatchSearch reports whether query is a case-insensitive substring of at
// least one field. An empty query matches everything.
func MatchSearch(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// Filter returns the items for which keep is true, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Page is a zero-based page index and a page size.
type Page struct {
	Index int
	Size  int
}

// Normalize applies the default size and clamps a negative index.
func (p Page) Normalize() Page {
	if !isValidPageSize(p.Size) {
		p.Size = DefaultPageSize
	}
	if p.Index < 0 {
		p.Index = 0
	}
	return p
}

// Paginate returns items[index*size : index*size+size], clamped to the slice.
func Paginate[T any](items []T, p Page) []T {
	p = p.Normalize()
	start := p.Index * p.Size
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Index      int
	Size       int
	Total      int
	TotalPages int
}

// NewPageInfo computes pagination metadata for total filtered rows.
func NewPageInfo(p Page, total int) PageInfo {
	p = p.Normalize()
	pages := (total + p.Size - 1) / p.Size
	if pages < 1 {
		pages = 1
	}
	return PageInfo{Index: p.Index, Size: p.Size, Total: total, TotalPages: pages}
}

// StartRow returns the 1-indexed first row on the page, or 0 when empty.
func (pi PageInfo) StartRow() int {
	if pi.Total == 0 || pi.Index*pi.Size >= pi.Total {
		return 0
	}
	return pi.Index*pi.Size + 1
}

// EndRow returns the 1-indexed last row on the page.
func (pi PageInfo) EndRow() int {
	end := (pi.Index + 1) * pi.Size
	if end > pi.Total {
		end = pi.Total
	}
	return end
}

func (pi PageInfo) HasPrev() bool { return pi.Index > 0 }
func (pi PageInfo) HasNext() bool { return pi.Index+1 < pi.TotalPages }

// State remembers the last applied filter so that changing any criterion
// sends the user back to the first page.
type State[F comparable] struct {
	filter F
	page   Page
	seen   bool
}

// Apply records filter and the requested page and returns the page to show.
// The requested index is ignored when the filter differs from the last one.
func (s *State[F]) Apply(filter F, requested Page) Page {
	requested = requested.Normalize()
	if s.seen && filter != s.filter {
		requested.Index = 0
	}
	if s.seen && requested.Size != s.page.Size {
		requested.Index = 0
	}
	s.filter = filter
	s.page = requested
	s.seen = true
	return s.page
}

// ParsePage reads page and per_page from query values.
func ParsePage(q url.Values) Page {
	idx, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("per_page"))
	return Page{Index: idx, Size: size}.Normalize()
}

func isValidPageSize(n int) bool {
	for _, opt := range PageSizeOptions {
		if n == opt {
			return true
		}
	}
	return false
}
