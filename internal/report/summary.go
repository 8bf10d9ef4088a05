package report

import (
	"strconv"
	"time"

	"github.com/nao1215/linkboard/internal/analytics"
	"github.com/nao1215/linkboard/internal/model"
)

// Summary is everything a summary report shows about one dataset.
type Summary struct {
	Version     string            `json:"version,omitempty"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Dataset     *model.Dataset    `json:"dataset"`
	Analytics   *analytics.Report `json:"analytics"`
}

// NewSummary analyzes ds and wraps the result for the writers.
func NewSummary(ds *model.Dataset, opts analytics.Options, version string, now time.Time) *Summary {
	return &Summary{
		Version:     version,
		GeneratedAt: now,
		Dataset:     ds,
		Analytics:   analytics.Analyze(ds, opts),
	}
}

// localeTotal formats a locale total, marking even-split estimates.
func localeTotal(l model.LocaleAggregate) string {
	if l.Estimated {
		return strconv.Itoa(l.Total) + " (est.)"
	}
	return strconv.Itoa(l.Total)
}
