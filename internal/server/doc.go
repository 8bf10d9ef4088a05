// Package server serves the broken-link dashboard: a server-rendered HTML
// page, a JSON API over the same data, the CSV export, and health, readiness
// and Prometheus metrics endpoints.
//
// Every request reads the dataset through the loader, which caches it, and
// recomputes the table view from the request's query parameters. No
// per-viewer state is kept on the server; the URL is the state.
package server
