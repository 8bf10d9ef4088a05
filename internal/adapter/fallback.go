package adapter

import (
	"time"

	"github.com/nao1215/linkboard/internal/model"
)

// Values of the default document shown when results.json is unavailable.
// They are deliberately static so the degraded state is recognizable.
const (
	fallbackTotalRuns   = 156
	fallbackTotalURLs   = 10840
	fallbackBrokenLinks = 147
	fallbackSuccessRate = 98.6
)

// DefaultDocument returns the fixed, clearly fake document used in degraded
// mode. It carries no broken-link records.
func DefaultDocument(now time.Time) *model.Document {
	return &model.Document{
		LastUpdated:     now.UTC().Format(time.RFC3339),
		TotalRuns:       model.IntPtr(fallbackTotalRuns),
		TotalURLs:       model.IntPtr(fallbackTotalURLs),
		BrokenLinks:     model.IntPtr(fallbackBrokenLinks),
		SuccessRate:     model.FloatPtr(fallbackSuccessRate),
		BrokenLinksList: []model.RawLink{},
	}
}
