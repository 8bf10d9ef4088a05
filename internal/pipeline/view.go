package pipeline

import (
	"slices"

	"github.com/nao1215/linkboard/internal/model"
)

// pageWindow is how many page numbers are shown on each side of the
// current page.
const pageWindow = 2

// View is the working state a Pipeline operates on. Filter and sort steps
// rewrite Links; Paginate fills Page and Pagination.
type View struct {
	// Query is the query being applied, with defaults filled in.
	Query Query

	// Links is the filtered and sorted working set.
	Links []model.BrokenLink

	// Page is the visible slice of Links.
	Page []model.BrokenLink

	// Pagination describes Page within Links.
	Pagination Pagination

	// Unfiltered is the record count before any filter ran.
	Unfiltered int

	// Trace lists the steps that ran, in order.
	Trace []StepTrace
}

// NewView returns a view over a copy of links. The input is not modified.
func NewView(links []model.BrokenLink, q Query) *View {
	working := slices.Clone(links)
	if working == nil {
		working = []model.BrokenLink{}
	}
	return &View{
		Query:      q.normalized(),
		Links:      working,
		Page:       []model.BrokenLink{},
		Unfiltered: len(links),
	}
}

// Total returns the number of records matching the query.
func (v *View) Total() int {
	return len(v.Links)
}

// Empty reports whether no record matches the query.
func (v *View) Empty() bool {
	return len(v.Links) == 0
}

// Pagination describes the current page of a View.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
	TotalItems int   `json:"totalItems"`
	HasPrev    bool  `json:"hasPrev"`
	HasNext    bool  `json:"hasNext"`
	Window     []int `json:"window"`

	// Start and End are the 1-based positions of the first and last
	// visible records; both are 0 on an empty page.
	Start int `json:"start"`
	End   int `json:"end"`
}

// Paginated reports whether pagination controls should be shown.
func (p Pagination) Paginated() bool {
	return p.TotalPages > 1
}

// Prev returns the previous page number, clamped to 1.
func (p Pagination) Prev() int {
	return max(p.Page-1, 1)
}

// Next returns the next page number, clamped to the last page.
func (p Pagination) Next() int {
	return min(p.Page+1, max(p.TotalPages, 1))
}

// paginate computes the pagination for total items.
func paginate(total, page, size int) Pagination {
	if size < 1 {
		size = DefaultPageSize
	}

	pages := (total + size - 1) / size
	page = min(max(page, 1), max(pages, 1))

	p := Pagination{
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		TotalItems: total,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}

	if total > 0 {
		p.Start = (page-1)*size + 1
		p.End = min(page*size, total)
	}

	for n := max(page-pageWindow, 1); n <= min(page+pageWindow, pages); n++ {
		p.Window = append(p.Window, n)
	}
	return p
}
