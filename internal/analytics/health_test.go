package analytics

import (
	"testing"

	"github.com/nao1215/linkboard/internal/model"
)

func TestHealthScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rate   float64
		broken int
		total  int
		want   float64
	}{
		{name: "typical run", rate: 98.6, broken: 147, total: 10840, want: 68.6},
		{name: "perfect run", rate: 100, broken: 0, total: 500, want: 70},
		{name: "no URLs", rate: 100, broken: 0, total: 0, want: 70},
		{name: "clamped at zero", rate: 0, broken: 10, total: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HealthScore(tt.rate, tt.broken, tt.total); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate float64
		want string
	}{
		{100, "A+"}, {99, "A+"}, {98.6, "A"}, {97, "A"}, {95.5, "A-"},
		{90, "B"}, {89.9, "C"}, {85, "C"}, {80, "D"}, {79.9, "F"}, {0, "F"},
	}

	for _, tt := range tests {
		if got := Grade(tt.rate); got != tt.want {
			t.Errorf("Grade(%v): expected %s, got %s", tt.rate, tt.want, got)
		}
	}
}

func TestHealthOf(t *testing.T) {
	t.Parallel()

	h := HealthOf(model.RunSummary{TotalURLs: 10840, BrokenLinks: 147, SuccessRate: 98.6})
	if h.Score != 68.6 || h.Grade != "A" {
		t.Errorf("unexpected health %+v", h)
	}
}

func TestPriorityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		priority Priority
		expected string
	}{
		{PriorityMedium, "Medium"},
		{PriorityHigh, "High"},
		{PriorityCritical, "Critical"},
		{Priority(42), "Unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.priority.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.priority.String(), tc.expected)
			}
		})
	}
}
