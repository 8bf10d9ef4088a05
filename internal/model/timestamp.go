package model

import (
	"strings"
	"time"
)

// DisplayTimeLayout is the layout used for timestamps in tables and CSV
// exports (yyyy-MM-dd HH:mm:ss).
const DisplayTimeLayout = "2006-01-02 15:04:05"

// NotAvailable is shown in place of missing values.
const NotAvailable = "N/A"

// timestampFormats lists the timestamp shapes the checker is known to emit.
// More specific formats come first. Formats without a zone are read as UTC.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp in any of the shapes the
// checker emits. The boolean is false when no format matched.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders s with DisplayTimeLayout. Unparsable values are
// returned verbatim and empty values become "N/A".
func FormatTimestamp(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	return t.Format(DisplayTimeLayout)
}
