package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sentinel status labels written by the link checker when no HTTP response
// was received.
const (
	StatusLabelTimeout      = "Timeout"
	StatusLabelNetworkError = "Network Error"
	StatusLabelError        = "Error"
)

// StatusCode is the HTTP status of a broken link, or a non-numeric sentinel
// when the request never produced a response.
//
// The zero value means the status was absent from the Result Document.
type StatusCode struct {
	// Code is the numeric HTTP status. Zero when Label is set or absent.
	Code int

	// Label is the sentinel code (e.g. "Timeout"). Empty for numeric codes.
	Label string
}

// NewStatusCode returns a numeric status code.
func NewStatusCode(code int) StatusCode {
	return StatusCode{Code: code}
}

// NewSentinelStatus returns a non-numeric status code such as "Timeout".
func NewSentinelStatus(label string) StatusCode {
	return StatusCode{Label: label}
}

// IsAbsent reports whether the document carried no status for the record.
func (s StatusCode) IsAbsent() bool {
	return s.Code == 0 && s.Label == ""
}

// IsNumeric reports whether the status is an HTTP status number.
func (s StatusCode) IsNumeric() bool {
	return s.Label == "" && s.Code != 0
}

// IsClientError reports whether the status is any 4xx code.
func (s StatusCode) IsClientError() bool {
	return s.IsNumeric() && s.Code >= 400 && s.Code < 500
}

// IsServerError reports whether the status is any 5xx code.
func (s StatusCode) IsServerError() bool {
	return s.IsNumeric() && s.Code >= 500 && s.Code < 600
}

// String returns the stringified status: the number, the sentinel label,
// or an empty string when absent.
func (s StatusCode) String() string {
	switch {
	case s.IsNumeric():
		return strconv.Itoa(s.Code)
	case s.Label != "":
		return s.Label
	default:
		return ""
	}
}

// Display returns the status for presentation, "N/A" when absent.
func (s StatusCode) Display() string {
	if s.IsAbsent() {
		return NotAvailable
	}
	return s.String()
}

// MarshalJSON writes numeric codes as JSON numbers, sentinels as strings
// and absent codes as null.
func (s StatusCode) MarshalJSON() ([]byte, error) {
	switch {
	case s.IsNumeric():
		return []byte(strconv.Itoa(s.Code)), nil
	case s.Label != "":
		return json.Marshal(s.Label)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, a numeric string ("404"), a sentinel
// string ("Timeout") or null.
func (s *StatusCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = StatusCode{}
		return nil
	}

	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("invalid status code %s: %w", data, err)
		}
		*s = ParseStatusCode(str)
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("invalid status code %s: %w", data, err)
	}
	*s = StatusCode{Code: int(math.Round(num))}
	return nil
}

// ParseStatusCode converts a textual status into a StatusCode.
// Numeric strings become numeric codes; anything else is kept as a label.
func ParseStatusCode(str string) StatusCode {
	str = strings.TrimSpace(str)
	if str == "" {
		return StatusCode{}
	}
	if code, err := strconv.Atoi(str); err == nil {
		return StatusCode{Code: code}
	}
	return StatusCode{Label: str}
}

// Compare orders status codes numerically. Numeric codes come before
// sentinels, which come before absent codes; sentinels compare by label.
func (s StatusCode) Compare(other StatusCode) int {
	rank := func(c StatusCode) int {
		switch {
		case c.IsNumeric():
			return 0
		case c.Label != "":
			return 1
		default:
			return 2
		}
	}

	ra, rb := rank(s), rank(other)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 0:
		return s.Code - other.Code
	case 1:
		return strings.Compare(s.Label, other.Label)
	default:
		return 0
	}
}
