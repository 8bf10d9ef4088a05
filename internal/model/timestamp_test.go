package model

import (
	"testing"
	"time"
)

// TestParseTimestamp tests the accepted timestamp shapes.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"RFC3339 with Z", "2025-01-15T10:30:00Z", true},
		{"RFC3339 with offset", "2025-01-15T19:30:00+09:00", true},
		{"fractional seconds without zone", "2025-01-15T10:30:00.000000", true},
		{"ISO without zone", "2025-01-15T10:30:00", true},
		{"space separated", "2025-01-15 10:30:00", true},
		{"garbage", "yesterday", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseTimestamp(tt.input)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && !got.Equal(want) {
				t.Errorf("expected %v, got %v", want, got)
			}
		})
	}
}

// TestFormatTimestamp tests display formatting.
func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	if got := FormatTimestamp("2025-03-01T08:05:09Z"); got != "2025-03-01 08:05:09" {
		t.Errorf("expected 2025-03-01 08:05:09, got %q", got)
	}
	if got := FormatTimestamp("not a date"); got != "not a date" {
		t.Errorf("expected verbatim value, got %q", got)
	}
	if got := FormatTimestamp(""); got != NotAvailable {
		t.Errorf("expected N/A, got %q", got)
	}
}
