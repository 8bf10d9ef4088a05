package pipeline

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/nao1215/linkboard/internal/adapter"
	"github.com/nao1215/linkboard/internal/model"
)

// LocaleFilter keeps records of one locale. An empty locale keeps all.
type LocaleFilter struct {
	locale string
}

// NewLocaleFilter creates a LocaleFilter.
func NewLocaleFilter(locale string) *LocaleFilter {
	return &LocaleFilter{locale: strings.TrimSpace(locale)}
}

// Name returns the step name.
func (s *LocaleFilter) Name() string {
	return "locale_filter"
}

// Do executes the step.
func (s *LocaleFilter) Do(_ context.Context, view *View) error {
	if s.locale == "" {
		return nil
	}
	view.Links = slices.DeleteFunc(view.Links, func(l model.BrokenLink) bool {
		return l.Locale != s.locale
	})
	return nil
}

// StatusFilter keeps records whose displayed status equals the filter,
// e.g. "404", "Timeout" or "N/A" for records without a status.
type StatusFilter struct {
	status string
}

// NewStatusFilter creates a StatusFilter.
func NewStatusFilter(status string) *StatusFilter {
	return &StatusFilter{status: strings.TrimSpace(status)}
}

// Name returns the step name.
func (s *StatusFilter) Name() string {
	return "status_filter"
}

// Do executes the step.
func (s *StatusFilter) Do(_ context.Context, view *View) error {
	if s.status == "" {
		return nil
	}
	view.Links = slices.DeleteFunc(view.Links, func(l model.BrokenLink) bool {
		return l.StatusCode.Display() != s.status
	})
	return nil
}

// ErrorTypeFilter keeps records of one error classification.
type ErrorTypeFilter struct {
	errorType string
}

// NewErrorTypeFilter creates an ErrorTypeFilter.
func NewErrorTypeFilter(errorType string) *ErrorTypeFilter {
	return &ErrorTypeFilter{errorType: strings.TrimSpace(errorType)}
}

// Name returns the step name.
func (s *ErrorTypeFilter) Name() string {
	return "error_type_filter"
}

// Do executes the step.
func (s *ErrorTypeFilter) Do(_ context.Context, view *View) error {
	if s.errorType == "" {
		return nil
	}
	view.Links = slices.DeleteFunc(view.Links, func(l model.BrokenLink) bool {
		return l.ErrorType != s.errorType
	})
	return nil
}

// SearchFilter keeps records containing the search text, compared with
// Unicode case folding. ScopeURL looks at the URL only; ScopeAll also looks
// at the source page and the anchor text.
type SearchFilter struct {
	term  string
	scope SearchScope
}

// NewSearchFilter creates a SearchFilter. Surrounding whitespace in term is
// ignored; an empty term keeps all records.
func NewSearchFilter(term string, scope SearchScope) *SearchFilter {
	if scope == "" {
		scope = ScopeAll
	}
	return &SearchFilter{term: strings.TrimSpace(term), scope: scope}
}

// Name returns the step name.
func (s *SearchFilter) Name() string {
	return "search_filter"
}

// Do executes the step.
func (s *SearchFilter) Do(_ context.Context, view *View) error {
	if s.term == "" {
		return nil
	}

	fold := cases.Fold()
	needle := fold.String(s.term)
	contains := func(field string) bool {
		return field != "" && strings.Contains(fold.String(field), needle)
	}

	view.Links = slices.DeleteFunc(view.Links, func(l model.BrokenLink) bool {
		if contains(l.URL) {
			return false
		}
		if s.scope == ScopeAll && (contains(l.Source) || contains(l.Text)) {
			return false
		}
		return true
	})
	return nil
}

// Sort orders the working set. SortDefault uses the priority order and
// ignores the direction; any other column is sorted stably in the given
// direction.
type Sort struct {
	column    SortColumn
	direction Direction
}

// NewSort creates a Sort step.
func NewSort(column SortColumn, direction Direction) *Sort {
	if direction == "" {
		direction = Ascending
	}
	return &Sort{column: column, direction: direction}
}

// Name returns the step name.
func (s *Sort) Name() string {
	return "sort"
}

// Do executes the step.
func (s *Sort) Do(_ context.Context, view *View) error {
	if s.column == SortDefault {
		view.Links = adapter.SortByPriority(view.Links)
		return nil
	}

	compare := columnComparator(s.column)
	if s.direction == Descending {
		asc := compare
		compare = func(a, b model.BrokenLink) int { return asc(b, a) }
	}
	slices.SortStableFunc(view.Links, compare)
	return nil
}

// columnComparator returns the ascending order for a column.
func columnComparator(column SortColumn) func(a, b model.BrokenLink) int {
	fold := cases.Fold()
	folded := func(field func(model.BrokenLink) string) func(a, b model.BrokenLink) int {
		return func(a, b model.BrokenLink) int {
			return cmp.Compare(fold.String(field(a)), fold.String(field(b)))
		}
	}

	switch column {
	case SortStatus:
		return func(a, b model.BrokenLink) int { return a.StatusCode.Compare(b.StatusCode) }
	case SortLatency:
		return func(a, b model.BrokenLink) int { return cmp.Compare(a.LatencyMS, b.LatencyMS) }
	case SortLastChecked:
		return compareLastChecked
	case SortLocale:
		return folded(func(l model.BrokenLink) string { return l.Locale })
	case SortErrorType:
		return folded(func(l model.BrokenLink) string { return l.ErrorType })
	case SortSource:
		return folded(func(l model.BrokenLink) string { return l.Source })
	case SortText:
		return folded(func(l model.BrokenLink) string { return l.Text })
	default:
		return folded(func(l model.BrokenLink) string { return l.URL })
	}
}

// compareLastChecked orders by parsed instant; unparsable timestamps come
// after parsable ones and compare by their raw text.
func compareLastChecked(a, b model.BrokenLink) int {
	az, bz := a.CheckedAt.IsZero(), b.CheckedAt.IsZero()
	switch {
	case az && bz:
		return cmp.Compare(a.LastChecked, b.LastChecked)
	case az:
		return 1
	case bz:
		return -1
	default:
		return a.CheckedAt.Compare(b.CheckedAt)
	}
}

// Paginate cuts the visible page out of the working set.
type Paginate struct {
	page     int
	pageSize int
}

// NewPaginate creates a Paginate step. Out-of-range pages are clamped when
// the step runs.
func NewPaginate(page, pageSize int) *Paginate {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Paginate{page: page, pageSize: pageSize}
}

// Name returns the step name.
func (s *Paginate) Name() string {
	return "paginate"
}

// Do executes the step.
func (s *Paginate) Do(_ context.Context, view *View) error {
	p := paginate(len(view.Links), s.page, s.pageSize)
	view.Pagination = p
	view.Query.Page = p.Page
	view.Query.PageSize = p.PageSize

	if p.Start == 0 {
		view.Page = []model.BrokenLink{}
		return nil
	}
	view.Page = view.Links[p.Start-1 : p.End]
	return nil
}
