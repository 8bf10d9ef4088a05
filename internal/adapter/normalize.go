package adapter

import (
	"math"
	"strings"
	"time"

	"github.com/nao1215/linkboard/internal/model"
)

// NormalizeOptions controls how a document is turned into a Dataset.
type NormalizeOptions struct {
	// Source is recorded on the Dataset.
	Source string

	// Now is the load time. Zero means time.Now().
	Now time.Time

	// History is the real trend series from the run history, oldest first.
	// It is used when the document carries no trends of its own.
	History []model.TrendPoint

	// SyntheticTrends enables the simulated series. It is stored apart from
	// the real series.
	SyntheticTrends bool

	// SyntheticDays is the length of the simulated series. Zero means 30.
	SyntheticDays int

	// Seed makes the simulated series reproducible.
	Seed uint64
}

// DefaultSyntheticDays is the length of the simulated trend series.
const DefaultSyntheticDays = 30

// Normalize turns a Result Document into a Dataset: optional record fields
// get their defaults, and the summary, distributions, locale aggregates and
// trend series are derived. Aggregates precomputed by the checker are only
// used when the document carries no records.
func Normalize(doc *model.Document, opts NormalizeOptions) *model.Dataset {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	links := NormalizeLinks(doc.BrokenLinksList)
	summary := Summarize(doc, links)

	ds := &model.Dataset{
		Source:   opts.Source,
		LoadedAt: now,
		Summary:  summary,
		Links:    links,
	}

	if len(links) == 0 && len(doc.ErrorDistribution) > 0 {
		ds.ErrorDistribution = documentDistribution(doc.ErrorDistribution)
	} else {
		ds.ErrorDistribution = ErrorDistribution(links)
	}

	if len(links) == 0 && len(doc.ResponseTimeDistribution) > 0 {
		ds.ResponseTimes = documentResponseTimes(doc.ResponseTimeDistribution)
	} else {
		ds.ResponseTimes = ResponseTimeBuckets(links)
	}

	if len(links) == 0 && len(doc.Locales) > 0 {
		ds.Locales = documentLocales(doc.Locales)
	} else {
		ds.Locales = LocaleAggregates(summary.TotalURLs, links)
	}

	ds.Trends = SelectTrends(doc, ds, opts.History, now)

	if opts.SyntheticTrends {
		days := opts.SyntheticDays
		if days <= 0 {
			days = DefaultSyntheticDays
		}
		synthetic := SyntheticTrend(summary.BrokenLinks, days, now, opts.Seed)
		ds.SyntheticTrends = &synthetic
	}

	return ds
}

// NormalizeLinks applies field defaults to every raw record, preserving
// source order and recording each record's position.
func NormalizeLinks(raw []model.RawLink) []model.BrokenLink {
	links := make([]model.BrokenLink, len(raw))
	for i, r := range raw {
		links[i] = normalizeLink(i, r)
	}
	return links
}

func normalizeLink(index int, r model.RawLink) model.BrokenLink {
	link := model.BrokenLink{
		Index:       index,
		URL:         strings.TrimSpace(r.URL),
		Locale:      strings.TrimSpace(r.Locale),
		StatusCode:  r.StatusCode,
		ErrorType:   normalizeLabel(r.ErrorType),
		Source:      strings.TrimSpace(r.Source),
		Text:        strings.TrimSpace(r.Text),
		LastChecked: strings.TrimSpace(r.LastChecked),
		DeepCheck:   r.IsDeepCheck || r.DeepCheck,
	}

	if link.Locale == "" {
		link.Locale = model.UnknownLocale
	}
	if link.ErrorType == "" {
		link.ErrorType = model.UnknownErrorType
	}
	if t, ok := model.ParseTimestamp(link.LastChecked); ok {
		link.CheckedAt = t
	}
	if r.Latency != nil {
		link.HasLatency = true
		link.LatencyMS = max(int(math.Round(*r.Latency)), 0)
	}

	return link
}
