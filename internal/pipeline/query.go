package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultPageSize is the number of records per page.
const DefaultPageSize = 20

// ErrUnknownSortColumn is returned when a sort column name is not recognized.
var ErrUnknownSortColumn = errors.New("unknown sort column")

// ErrUnknownSearchScope is returned when a search scope name is not recognized.
var ErrUnknownSearchScope = errors.New("unknown search scope")

// SortColumn names a sortable column of the broken-links table.
// The zero value selects the default priority order.
type SortColumn string

// Sortable columns.
const (
	SortDefault     SortColumn = ""
	SortStatus      SortColumn = "status"
	SortURL         SortColumn = "url"
	SortLocale      SortColumn = "locale"
	SortErrorType   SortColumn = "errorType"
	SortSource      SortColumn = "source"
	SortText        SortColumn = "text"
	SortLastChecked SortColumn = "lastChecked"
	SortLatency     SortColumn = "latency"
)

// SortColumns lists the explicit sort columns in table order.
func SortColumns() []SortColumn {
	return []SortColumn{
		SortStatus, SortURL, SortLocale, SortErrorType,
		SortSource, SortText, SortLastChecked, SortLatency,
	}
}

// ParseSortColumn converts a column name, matched case-insensitively.
// The empty string and "priority" select the default order.
func ParseSortColumn(s string) (SortColumn, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "priority") {
		return SortDefault, nil
	}
	for _, c := range SortColumns() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return SortDefault, fmt.Errorf("%w: %q", ErrUnknownSortColumn, s)
}

// Direction is the sort direction.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection returns Descending for "desc" (any case), else Ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Descending)) {
		return Descending
	}
	return Ascending
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// SearchScope selects which fields free-text search looks at.
type SearchScope string

// Search scopes.
const (
	// ScopeURL searches the URL only.
	ScopeURL SearchScope = "url"

	// ScopeAll searches the URL, the source page and the anchor text.
	ScopeAll SearchScope = "all"
)

// ParseSearchScope converts a scope name. The empty string means ScopeAll.
func ParseSearchScope(s string) (SearchScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ScopeAll):
		return ScopeAll, nil
	case string(ScopeURL):
		return ScopeURL, nil
	default:
		return ScopeAll, fmt.Errorf("%w: %q", ErrUnknownSearchScope, s)
	}
}

// Query is the complete description of one table view.
// Empty filter fields match everything.
type Query struct {
	Locale    string
	Status    string
	ErrorType string
	Search    string
	Scope     SearchScope
	Sort      SortColumn
	Direction Direction
	Page      int
	PageSize  int
}

// NewQuery returns the unfiltered first page in priority order.
func NewQuery() Query {
	return Query{
		Scope:     ScopeAll,
		Direction: Ascending,
		Page:      1,
		PageSize:  DefaultPageSize,
	}
}

// Filtered reports whether any filter or search is active.
func (q Query) Filtered() bool {
	return q.Locale != "" || q.Status != "" || q.ErrorType != "" || strings.TrimSpace(q.Search) != ""
}

// normalized fills zero fields with their defaults.
func (q Query) normalized() Query {
	if q.Scope == "" {
		q.Scope = ScopeAll
	}
	if q.Direction == "" {
		q.Direction = Ascending
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	q.Locale = strings.TrimSpace(q.Locale)
	q.Status = strings.TrimSpace(q.Status)
	q.ErrorType = strings.TrimSpace(q.ErrorType)
	return q
}
