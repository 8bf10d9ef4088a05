package model

import (
	"encoding/json"
	"testing"
)

// TestStatusCodeUnmarshalJSON tests decoding of polymorphic status codes.
func TestStatusCodeUnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantCode  int
		wantLabel string
		wantAbsent bool
	}{
		{name: "integer status", input: `404`, wantCode: 404},
		{name: "float status is rounded", input: `500.0`, wantCode: 500},
		{name: "numeric string becomes number", input: `"429"`, wantCode: 429},
		{name: "sentinel string is kept as label", input: `"Timeout"`, wantLabel: "Timeout"},
		{name: "network error sentinel", input: `"Network Error"`, wantLabel: "Network Error"},
		{name: "null is absent", input: `null`, wantAbsent: true},
		{name: "empty string is absent", input: `""`, wantAbsent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var s StatusCode
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.IsAbsent() != tt.wantAbsent {
				t.Errorf("expected absent=%v, got %v", tt.wantAbsent, s.IsAbsent())
			}
			if s.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, s.Code)
			}
			if s.Label != tt.wantLabel {
				t.Errorf("expected label %q, got %q", tt.wantLabel, s.Label)
			}
		})
	}
}

// TestStatusCodeUnmarshalJSON_Invalid tests that malformed values are rejected.
func TestStatusCodeUnmarshalJSON_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`true`, `{}`, `[1]`} {
		var s StatusCode
		if err := json.Unmarshal([]byte(input), &s); err == nil {
			t.Errorf("expected error for %s", input)
		}
	}
}

// TestStatusCodeMarshalJSON tests that encoding mirrors the document shape.
func TestStatusCodeMarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status StatusCode
		want   string
	}{
		{NewStatusCode(404), `404`},
		{NewSentinelStatus("Timeout"), `"Timeout"`},
		{StatusCode{}, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			got, err := json.Marshal(tt.status)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

// TestStatusCodeString tests stringification and display values.
func TestStatusCodeString(t *testing.T) {
	t.Parallel()

	t.Run("numeric", func(t *testing.T) {
		t.Parallel()
		s := NewStatusCode(503)
		if s.String() != "503" || s.Display() != "503" {
			t.Errorf("expected 503, got %q / %q", s.String(), s.Display())
		}
	})

	t.Run("sentinel", func(t *testing.T) {
		t.Parallel()
		s := NewSentinelStatus(StatusLabelTimeout)
		if s.String() != "Timeout" {
			t.Errorf("expected Timeout, got %q", s.String())
		}
	})

	t.Run("absent displays N/A", func(t *testing.T) {
		t.Parallel()
		s := StatusCode{}
		if s.String() != "" {
			t.Errorf("expected empty string, got %q", s.String())
		}
		if s.Display() != NotAvailable {
			t.Errorf("expected %q, got %q", NotAvailable, s.Display())
		}
	})
}

// TestStatusCodeClassification tests the 4xx/5xx helpers.
func TestStatusCodeClassification(t *testing.T) {
	t.Parallel()

	if !NewStatusCode(404).IsClientError() {
		t.Error("expected 404 to be a client error")
	}
	if NewStatusCode(500).IsClientError() {
		t.Error("expected 500 not to be a client error")
	}
	if !NewStatusCode(502).IsServerError() {
		t.Error("expected 502 to be a server error")
	}
	if NewSentinelStatus("Timeout").IsServerError() {
		t.Error("expected sentinel not to be a server error")
	}
}

// TestStatusCodeCompare tests numeric-first ordering.
func TestStatusCodeCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b StatusCode
		sign int
	}{
		{"numeric order", NewStatusCode(404), NewStatusCode(500), -1},
		{"equal numbers", NewStatusCode(404), NewStatusCode(404), 0},
		{"numeric before sentinel", NewStatusCode(999), NewSentinelStatus("Error"), -1},
		{"sentinel before absent", NewSentinelStatus("Timeout"), StatusCode{}, -1},
		{"sentinels by label", NewSentinelStatus("Timeout"), NewSentinelStatus("Error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.a.Compare(tt.b)
			switch {
			case tt.sign < 0 && got >= 0, tt.sign > 0 && got <= 0, tt.sign == 0 && got != 0:
				t.Errorf("expected sign %d, got %d", tt.sign, got)
			}
		})
	}
}
