package server

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/linkboard/internal/pipeline"
)

// Query parameter names shared by the dashboard, the JSON API and the export.
const (
	paramLocale    = "locale"
	paramStatus    = "status"
	paramErrorType = "errorType"
	paramSearch    = "q"
	paramScope     = "scope"
	paramSort      = "sort"
	paramDir       = "dir"
	paramPage      = "page"
	paramPageSize  = "pageSize"
	paramView      = "view"
	paramLocaleBy  = "lsort"
	paramLocaleDir = "ldir"
)

// maxPageSize bounds the pageSize parameter of the JSON API.
const maxPageSize = 500

// ParseQuery builds a table query from URL parameters. Unknown sort columns
// and search scopes are reported as errors; a malformed page number selects
// the first page. pageSize is used unless the pageSize parameter overrides it.
func ParseQuery(values url.Values, pageSize int) (pipeline.Query, error) {
	q := pipeline.NewQuery()
	if pageSize > 0 {
		q.PageSize = pageSize
	}

	q.Locale = strings.TrimSpace(values.Get(paramLocale))
	q.Status = strings.TrimSpace(values.Get(paramStatus))
	q.ErrorType = strings.TrimSpace(values.Get(paramErrorType))
	q.Search = values.Get(paramSearch)

	scope, err := pipeline.ParseSearchScope(values.Get(paramScope))
	if err != nil {
		return q, err
	}
	q.Scope = scope

	column, err := pipeline.ParseSortColumn(values.Get(paramSort))
	if err != nil {
		return q, err
	}
	q.Sort = column
	q.Direction = pipeline.ParseDirection(values.Get(paramDir))

	if page, err := strconv.Atoi(values.Get(paramPage)); err == nil {
		q.Page = max(page, 1)
	}
	if size, err := strconv.Atoi(values.Get(paramPageSize)); err == nil && size > 0 {
		q.PageSize = min(size, maxPageSize)
	}
	return q, nil
}

// lenientQuery is ParseQuery for the dashboard: invalid sort or scope values
// fall back to their defaults instead of failing the page.
func lenientQuery(values url.Values, pageSize int) pipeline.Query {
	q, err := ParseQuery(values, pageSize)
	if err == nil {
		return q
	}
	cleaned := url.Values{}
	for k, v := range values {
		cleaned[k] = v
	}
	if _, err := pipeline.ParseSortColumn(values.Get(paramSort)); err != nil {
		cleaned.Del(paramSort)
		cleaned.Del(paramDir)
	}
	if _, err := pipeline.ParseSearchScope(values.Get(paramScope)); err != nil {
		cleaned.Del(paramScope)
	}
	q, _ = ParseQuery(cleaned, pageSize)
	return q
}

// EncodeQuery renders q as URL parameters. Defaults are omitted so that
// links stay short; the page size is never encoded.
func EncodeQuery(q pipeline.Query) url.Values {
	v := url.Values{}
	if q.Locale != "" {
		v.Set(paramLocale, q.Locale)
	}
	if q.Status != "" {
		v.Set(paramStatus, q.Status)
	}
	if q.ErrorType != "" {
		v.Set(paramErrorType, q.ErrorType)
	}
	if q.Search != "" {
		v.Set(paramSearch, q.Search)
	}
	if q.Scope != "" && q.Scope != pipeline.ScopeAll {
		v.Set(paramScope, string(q.Scope))
	}
	if q.Sort != pipeline.SortDefault {
		v.Set(paramSort, string(q.Sort))
		if q.Direction == pipeline.Descending {
			v.Set(paramDir, string(pipeline.Descending))
		}
	}
	if q.Page > 1 {
		v.Set(paramPage, strconv.Itoa(q.Page))
	}
	return v
}
