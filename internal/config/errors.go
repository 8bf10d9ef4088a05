package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can match them with errors.Is.
var (
	// ErrNoSource is returned when no Result Document path or URL is configured.
	ErrNoSource = errors.New("no source specified: provide a results.json path or URL")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidPageSize is returned when the page size is not positive.
	ErrInvalidPageSize = errors.New("invalid page size: must be positive")

	// ErrInvalidCacheSize is returned when the dataset cache size is not positive.
	ErrInvalidCacheSize = errors.New("invalid cache size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidAnomalyThreshold is returned when the anomaly threshold is not positive.
	ErrInvalidAnomalyThreshold = errors.New("invalid anomaly threshold: must be positive")

	// ErrInvalidBasePath is returned when the base path does not start with "/".
	ErrInvalidBasePath = errors.New("invalid base path: must start with '/'")

	// ErrInvalidListenAddress is returned when the listen address is empty.
	ErrInvalidListenAddress = errors.New("invalid listen address: must not be empty")
)
