package pipeline

import (
	"fmt"

	"github.com/nao1215/linkboard/internal/model"
)

// testLinks builds n records cycling through three locales and a mix of
// statuses and classifications.
func testLinks(n int) []model.BrokenLink {
	locales := []string{"English", "Deutsch", "Español"}
	statuses := []model.StatusCode{
		model.NewStatusCode(404),
		model.NewStatusCode(500),
		model.NewSentinelStatus(model.StatusLabelTimeout),
		model.NewStatusCode(403),
	}
	types := []string{"Client Error", "Server Error", "Network Error", "Client Error"}

	links := make([]model.BrokenLink, n)
	for i := range n {
		links[i] = model.BrokenLink{
			Index:      i,
			URL:        fmt.Sprintf("https://example.com/page-%03d", i),
			Locale:     locales[i%len(locales)],
			StatusCode: statuses[i%len(statuses)],
			ErrorType:  types[i%len(types)],
			Source:     fmt.Sprintf("https://example.com/source-%d", i%5),
			Text:       fmt.Sprintf("Link %d", i),
			LatencyMS:  (n - i) * 100,
			HasLatency: true,
		}
	}
	return links
}
