// Package database stores the link checker run history in SQLite.
//
// Every imported Result Document becomes one row of the runs table with its
// headline numbers, its error distribution and the raw document. Rows are
// deduplicated by the SHA3-256 hash of the raw document, so importing the
// same results.json twice is a no-op.
//
// The history backs the real trend series of the dashboard and the run
// comparison. SQLite is used through modernc.org/sqlite, which is CGO-free.
package database
