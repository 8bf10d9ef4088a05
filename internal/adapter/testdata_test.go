package adapter

import (
	"fmt"

	"github.com/nao1215/linkboard/internal/model"
)

// sampleDocument builds a consistent document with three locales of
// perLocale broken records each.
func sampleDocument(perLocale int) *model.Document {
	locales := []string{"Deutsch", "English", "Español"}
	statuses := []model.StatusCode{
		model.NewStatusCode(404),
		model.NewStatusCode(500),
		model.NewSentinelStatus(model.StatusLabelTimeout),
	}

	var raw []model.RawLink
	for _, locale := range locales {
		for i := range perLocale {
			latency := float64(i * 250)
			raw = append(raw, model.RawLink{
				URL:         fmt.Sprintf("https://example.com/%s/page-%03d", locale, i),
				Locale:      locale,
				StatusCode:  statuses[i%len(statuses)],
				ErrorType:   "Client Error",
				Source:      "https://example.com/" + locale,
				LastChecked: "2025-01-15T10:30:00Z",
				Latency:     &latency,
			})
		}
	}

	broken := len(raw)
	return &model.Document{
		LastUpdated:     "2025-01-15T10:30:00Z",
		TotalRuns:       model.IntPtr(12),
		TotalURLs:       model.IntPtr(10840),
		BrokenLinks:     &broken,
		SuccessRate:     model.FloatPtr(98.64),
		BrokenLinksList: raw,
	}
}
