package model

import (
	"strconv"
	"time"
)

// Default labels given to records with missing fields.
const (
	UnknownLocale    = "Unknown"
	UnknownErrorType = "Unknown"
)

// ErrorTypeNetworkError is the checker's classification for requests that
// failed below HTTP (DNS, connection reset, TLS).
const ErrorTypeNetworkError = "Network Error"

// ErrorTypeServerError is the checker's classification for 5xx responses.
const ErrorTypeServerError = "Server Error"

// StatusUnreachable is the numeric sentinel some checkers use for links
// that could not be reached at all.
const StatusUnreachable = 999

// BrokenLink is a normalized broken-link record. Records are immutable once
// loaded; Index is the record's position in the source document.
type BrokenLink struct {
	Index       int        `json:"index"`
	URL         string     `json:"url"`
	Locale      string     `json:"locale"`
	StatusCode  StatusCode `json:"statusCode"`
	ErrorType   string     `json:"errorType"`
	Source      string     `json:"source"`
	Text        string     `json:"text,omitempty"`
	LastChecked string     `json:"lastChecked"`
	LatencyMS   int        `json:"latency"`
	DeepCheck   bool       `json:"deepCheck,omitempty"`

	// CheckedAt is LastChecked parsed; zero when unparsable.
	CheckedAt time.Time `json:"-"`

	// HasLatency is false when the document carried no latency.
	HasLatency bool `json:"-"`
}

// Priority ranks the record for the default table order. Lower ranks are
// worse failures and come first:
//
//	1: status 500
//	2: any 4xx
//	3: status 999
//	4: classification or status "Network Error"
//	5: everything else
func (l BrokenLink) Priority() int {
	switch {
	case l.StatusCode.IsNumeric() && l.StatusCode.Code == 500:
		return 1
	case l.StatusCode.IsClientError():
		return 2
	case l.StatusCode.IsNumeric() && l.StatusCode.Code == StatusUnreachable:
		return 3
	case l.ErrorType == ErrorTypeNetworkError || l.StatusCode.Label == StatusLabelNetworkError:
		return 4
	default:
		return 5
	}
}

// ErrorLabel is the key used in error distributions: the stringified status
// code, or the error classification when the status is absent.
func (l BrokenLink) ErrorLabel() string {
	if !l.StatusCode.IsAbsent() {
		return l.StatusCode.String()
	}
	if l.ErrorType != "" {
		return l.ErrorType
	}
	return UnknownErrorType
}

// LatencyDisplay returns the latency in milliseconds, or "N/A".
func (l BrokenLink) LatencyDisplay() string {
	if !l.HasLatency {
		return NotAvailable
	}
	return strconv.Itoa(l.LatencyMS)
}

// LastCheckedDisplay returns the last-checked timestamp formatted with
// DisplayTimeLayout.
func (l BrokenLink) LastCheckedDisplay() string {
	if !l.CheckedAt.IsZero() {
		return l.CheckedAt.Format(DisplayTimeLayout)
	}
	return FormatTimestamp(l.LastChecked)
}
