// Package pipeline turns a loaded dataset into the table a user sees.
//
// A Query describes the active filters, the sort and the page. ForQuery
// builds a Pipeline of Steps from it: locale, status, error-type and search
// filters, then the sort, then pagination. Each step narrows or reorders the
// working set of a View; the final step cuts the visible page.
//
// Filters are conjunctive and idempotent. Without an explicit sort column
// the records are shown in priority order (server errors first). The
// concatenation of every page reconstructs the filtered set, which is what
// CSV exports write.
//
// State is the mutable UI-facing wrapper around a Query: changing a filter
// or the sort resets the page to 1.
package pipeline
