package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	DefaultPage     = 1 // Default page is 1-based
)

// Page is one slice of an ordered sequence plus the metadata templates
// need for prev/next links.
type Page[T any] struct {
	Items          []T
	Number         int
	TotalPages     int
	TotalItems     int
	PageSize       int
	HasNext        bool
	HasPrevious    bool
	NextNumber     int
	PreviousNumber int
}

// HasOtherPages is true when pagination links should be rendered.
func (p Page[T]) HasOtherPages() bool {
	return p.HasNext || p.HasPrevious
}

// PageRange lists every page number, for numbered pagination links.
func (p Page[T]) PageRange() []int {
	r := make([]int, p.TotalPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// Paginate returns the requested 1-based page of items. Out-of-range page
// numbers are clamped to the first or last page; an empty sequence yields a
// single empty page.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}

	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	if page < 1 {
		page = DefaultPage
	}
	if page > totalPages {
		page = totalPages
	}

	start, end := CalculateSliceIndices(page, size, total)

	p := Page[T]{
		Items:       items[start:end],
		Number:      page,
		TotalPages:  totalPages,
		TotalItems:  total,
		PageSize:    size,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
	if p.HasNext {
		p.NextNumber = page + 1
	}
	if p.HasPrevious {
		p.PreviousNumber = page - 1
	}
	return p
}

// ParsePage reads the "page" query parameter. Missing or non-integer values
// mean the first page; range clamping is left to Paginate.
func ParsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		return DefaultPage
	}
	return page
}

// CalculateSliceIndices calculates the start and end indices for slicing an array for pagination
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	start = (page - 1) * size
	end = start + size

	if start >= totalItems {
		start = totalItems
		end = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return start, end
}
