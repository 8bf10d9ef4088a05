package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nao1215/linkboard/internal/model"
)

// DefaultSlowestLimit caps the slowest-links list.
const DefaultSlowestLimit = 10

// SlowestLinks returns the n links with the highest latency, slowest
// first. Links without a latency are ignored. n <= 0 means no limit.
func SlowestLinks(links []model.BrokenLink, n int) []model.BrokenLink {
	result := make([]model.BrokenLink, 0, len(links))
	for _, l := range links {
		if l.HasLatency {
			result = append(result, l)
		}
	}
	slices.SortStableFunc(result, func(a, b model.BrokenLink) int {
		if c := cmp.Compare(b.LatencyMS, a.LatencyMS); c != 0 {
			return c
		}
		return strings.Compare(a.URL, b.URL)
	})
	if n > 0 && len(result) > n {
		result = result[:n]
	}
	return result
}

// ErrorTypeStat summarizes one error classification.
type ErrorTypeStat struct {
	ErrorType  string   `json:"errorType"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
	Locales    []string `json:"affectedLocales"`
}

// ErrorTypeBreakdown counts links per error classification with the share
// of all links (two decimals) and the sorted list of affected locales.
// Records without a locale do not add to the locale list. The result is
// ordered by count descending, then classification.
func ErrorTypeBreakdown(links []model.BrokenLink) []ErrorTypeStat {
	type acc struct {
		count   int
		locales map[string]struct{}
	}

	byType := make(map[string]*acc)
	for _, l := range links {
		a, ok := byType[l.ErrorType]
		if !ok {
			a = &acc{locales: make(map[string]struct{})}
			byType[l.ErrorType] = a
		}
		a.count++
		if l.Locale != "" && l.Locale != model.UnknownLocale {
			a.locales[l.Locale] = struct{}{}
		}
	}

	result := make([]ErrorTypeStat, 0, len(byType))
	for t, a := range byType {
		locales := make([]string, 0, len(a.locales))
		for l := range a.locales {
			locales = append(locales, l)
		}
		slices.Sort(locales)

		result = append(result, ErrorTypeStat{
			ErrorType:  t,
			Count:      a.count,
			Percentage: round2(float64(a.count) / float64(len(links)) * 100),
			Locales:    locales,
		})
	}

	slices.SortFunc(result, func(a, b ErrorTypeStat) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.ErrorType, b.ErrorType)
	})
	return result
}
