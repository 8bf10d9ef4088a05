package pipeline

// State holds the interactive table state of one viewer. Every filter or
// sort change returns to the first page.
type State struct {
	query Query
}

// NewState returns the initial state with the given page size.
func NewState(pageSize int) *State {
	q := NewQuery()
	if pageSize > 0 {
		q.PageSize = pageSize
	}
	return &State{query: q}
}

// StateFromQuery wraps an existing query.
func StateFromQuery(q Query) *State {
	return &State{query: q.normalized()}
}

// Query returns the current query.
func (s *State) Query() Query {
	return s.query
}

// SetLocale sets the locale filter.
func (s *State) SetLocale(locale string) {
	s.query.Locale = locale
	s.query.Page = 1
}

// SetStatus sets the status filter.
func (s *State) SetStatus(status string) {
	s.query.Status = status
	s.query.Page = 1
}

// SetErrorType sets the error-type filter.
func (s *State) SetErrorType(errorType string) {
	s.query.ErrorType = errorType
	s.query.Page = 1
}

// SetSearch sets the free-text search and its scope.
func (s *State) SetSearch(term string, scope SearchScope) {
	s.query.Search = term
	if scope != "" {
		s.query.Scope = scope
	}
	s.query.Page = 1
}

// ToggleSort sorts by column. Selecting the current column again flips the
// direction; a new column starts ascending.
func (s *State) ToggleSort(column SortColumn) {
	if s.query.Sort == column {
		s.query.Direction = s.query.Direction.Flip()
	} else {
		s.query.Sort = column
		s.query.Direction = Ascending
	}
	s.query.Page = 1
}

// ClearFilters removes every filter and the search, keeping the sort.
func (s *State) ClearFilters() {
	s.query.Locale = ""
	s.query.Status = ""
	s.query.ErrorType = ""
	s.query.Search = ""
	s.query.Page = 1
}

// SetPage moves to page n. Values below 1 select the first page; the upper
// bound is applied when the pipeline runs.
func (s *State) SetPage(n int) {
	s.query.Page = max(n, 1)
}
