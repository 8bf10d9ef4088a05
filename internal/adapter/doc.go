// Package adapter turns a Result Document into the view-ready Dataset.
//
// The Loader fetches results.json from a file or an http(s) URL, falls back
// to a fixed default document when the source cannot be read or parsed,
// normalizes optional fields and derives the aggregates every view needs:
//   - response-time buckets (<1s, 1-3s, 3-5s, >5s)
//   - error distribution keyed by status code or classification
//   - per-locale aggregates with an even-split total estimate
//   - the real trend series, plus an optional synthetic one kept apart
//
// Normalized datasets are cached per source after the first successful
// load, so repeated consumers never re-fetch. Failures never reach the
// caller of Load; they are logged and surface as Dataset.Degraded.
package adapter
