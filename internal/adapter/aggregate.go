package adapter

import (
	"cmp"
	"math"
	"slices"

	"github.com/nao1215/linkboard/internal/model"
)

// ResponseTimeBuckets counts links per response-time bucket. All four
// buckets are returned in display order, including empty ones.
func ResponseTimeBuckets(links []model.BrokenLink) []model.LabelCount {
	counts := make(map[string]int, 4)
	for _, l := range links {
		counts[model.LatencyBucket(l.LatencyMS)]++
	}

	labels := model.BucketLabels()
	result := make([]model.LabelCount, len(labels))
	for i, label := range labels {
		result[i] = model.LabelCount{Label: label, Count: counts[label]}
	}
	return result
}

// ErrorDistribution counts links per stringified status code, using the
// error classification for links without a status. The result is ordered
// by count descending, then label.
func ErrorDistribution(links []model.BrokenLink) []model.LabelCount {
	counts := make(map[string]int)
	for _, l := range links {
		counts[l.ErrorLabel()]++
	}
	return sortedCounts(counts)
}

// LocaleAggregates groups links per locale. Every locale gets the same
// estimated total, ceil(totalURLs / distinct locales); the success rate is
// derived from that estimate and rounded to one decimal. The result is
// ordered by broken count descending, then locale name.
func LocaleAggregates(totalURLs int, links []model.BrokenLink) []model.LocaleAggregate {
	counts := make(map[string]int)
	for _, l := range links {
		counts[l.Locale]++
	}
	if len(counts) == 0 {
		return []model.LocaleAggregate{}
	}

	estimate := int(math.Ceil(float64(totalURLs) / float64(len(counts))))

	result := make([]model.LocaleAggregate, 0, len(counts))
	for name, broken := range counts {
		result = append(result, model.LocaleAggregate{
			Name:        name,
			Broken:      broken,
			Total:       estimate,
			SuccessRate: successRate(estimate, broken),
			Estimated:   true,
		})
	}
	sortLocales(result)
	return result
}

// Summarize builds the run summary. Document values win over derived ones;
// the broken count falls back to the record count and the success rate to
// (total-broken)/total. A total below the broken count is raised to it.
func Summarize(doc *model.Document, links []model.BrokenLink) model.RunSummary {
	broken, ok := model.IntValue(doc.BrokenLinks)
	if !ok {
		broken = len(links)
	}
	broken = max(broken, 0)

	total, ok := model.IntValue(doc.TotalURLs)
	if !ok || total < broken {
		total = broken
	}

	rate, ok := model.FloatValue(doc.SuccessRate)
	if ok {
		rate = clampPercent(Round1(rate))
	} else {
		rate = successRate(total, broken)
	}

	runs, _ := model.IntValue(doc.TotalRuns)

	summary := model.RunSummary{
		TotalURLs:   total,
		BrokenLinks: broken,
		SuccessRate: rate,
		TotalRuns:   max(runs, 0),
		LastUpdated: doc.LastUpdated,
	}
	if t, ok := model.ParseTimestamp(doc.LastUpdated); ok {
		summary.LastRun = t
	}

	var sum, n int
	for _, l := range links {
		if l.HasLatency {
			sum += l.LatencyMS
			n++
		}
	}
	if n > 0 {
		summary.AvgLatencyMS = int(math.Round(float64(sum) / float64(n)))
		summary.HasLatency = true
	}

	return summary
}

// documentDistribution converts a precomputed label -> count map.
func documentDistribution(m map[string]int) []model.LabelCount {
	return sortedCounts(m)
}

// documentResponseTimes converts a precomputed bucket map, keeping the
// bucket order and ignoring unknown keys.
func documentResponseTimes(m map[string]int) []model.LabelCount {
	labels := model.BucketLabels()
	result := make([]model.LabelCount, len(labels))
	for i, label := range labels {
		result[i] = model.LabelCount{Label: label, Count: m[label]}
	}
	return result
}

// documentLocales converts precomputed locale summaries.
func documentLocales(locales []model.LocaleSummary) []model.LocaleAggregate {
	result := make([]model.LocaleAggregate, 0, len(locales))
	for _, l := range locales {
		name := l.Name
		if name == "" {
			name = model.UnknownLocale
		}
		result = append(result, model.LocaleAggregate{
			Name:        name,
			Broken:      l.Broken,
			Total:       l.Total,
			SuccessRate: clampPercent(Round1(l.SuccessRate)),
		})
	}
	sortLocales(result)
	return result
}

func sortLocales(locales []model.LocaleAggregate) {
	slices.SortStableFunc(locales, func(a, b model.LocaleAggregate) int {
		if c := cmp.Compare(b.Broken, a.Broken); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

func sortedCounts(m map[string]int) []model.LabelCount {
	result := make([]model.LabelCount, 0, len(m))
	for label, count := range m {
		result = append(result, model.LabelCount{Label: label, Count: count})
	}
	slices.SortFunc(result, func(a, b model.LabelCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return result
}

// successRate returns (total-broken)/total*100 rounded to one decimal and
// clamped to [0,100]. An empty total yields 100 when nothing is broken.
func successRate(total, broken int) float64 {
	if total <= 0 {
		if broken > 0 {
			return 0
		}
		return 100
	}
	return clampPercent(Round1(float64(total-broken) / float64(total) * 100))
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
