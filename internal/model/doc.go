// Package model defines the data structures shared across linkboard.
//
// This package contains the following main types:
//   - Document: the Result Document (results.json) as written by the checker
//   - BrokenLink: a normalized broken-link record
//   - StatusCode: an HTTP status or a sentinel such as "Timeout"
//   - Dataset: the loaded, normalized view of one document
//
// The types are serializable to JSON for the HTTP API, report output and
// run history storage.
package model
