package model

import (
	"strconv"
	"time"
)

// Trend series origins.
const (
	TrendSourceDocument  = "document"
	TrendSourceHistory   = "history"
	TrendSourceCurrent   = "current"
	TrendSourceSynthetic = "synthetic"
)

// Response-time bucket labels, in display order.
const (
	BucketUnder1s = "<1s"
	Bucket1To3s   = "1-3s"
	Bucket3To5s   = "3-5s"
	BucketOver5s  = ">5s"
)

// BucketLabels lists the response-time buckets in display order.
func BucketLabels() []string {
	return []string{BucketUnder1s, Bucket1To3s, Bucket3To5s, BucketOver5s}
}

// LatencyBucket returns the response-time bucket for a latency in
// milliseconds. The buckets partition [0, inf); negative values fall into
// the first bucket.
func LatencyBucket(ms int) string {
	switch {
	case ms < 1000:
		return BucketUnder1s
	case ms < 3000:
		return Bucket1To3s
	case ms < 5000:
		return Bucket3To5s
	default:
		return BucketOver5s
	}
}

// Dataset is the loaded, normalized view of one Result Document. It is built
// once per source by the data adapter and shared read-only afterwards.
type Dataset struct {
	// Source is the path or URL the document was loaded from.
	Source string `json:"source"`

	// LoadedAt is when the document was loaded.
	LoadedAt time.Time `json:"loadedAt"`

	// Degraded is true when the document could not be loaded and the
	// default document was used instead.
	Degraded bool `json:"degraded"`

	// DegradedReason describes why the dataset is degraded.
	DegradedReason string `json:"degradedReason,omitempty"`

	Summary           RunSummary        `json:"summary"`
	Links             []BrokenLink      `json:"links"`
	ErrorDistribution []LabelCount      `json:"errorDistribution"`
	ResponseTimes     []LabelCount      `json:"responseTimes"`
	Locales           []LocaleAggregate `json:"locales"`

	// Trends is the real trend series (from the document, the run history
	// or the current run alone).
	Trends TrendSeries `json:"trends"`

	// SyntheticTrends is presentation filler, only set when explicitly
	// enabled. It is never merged into Trends.
	SyntheticTrends *TrendSeries `json:"syntheticTrends,omitempty"`
}

// RunSummary holds the KPI values of one checker run.
type RunSummary struct {
	TotalURLs   int       `json:"totalUrls"`
	BrokenLinks int       `json:"brokenLinks"`
	SuccessRate float64   `json:"successRate"`
	TotalRuns   int       `json:"totalRuns"`
	LastUpdated string    `json:"lastUpdated"`
	LastRun     time.Time `json:"-"`

	// AvgLatencyMS is the mean latency of records that carry one.
	AvgLatencyMS int  `json:"avgLatencyMs"`
	HasLatency   bool `json:"hasLatency"`
}

// AvgLatencyDisplay returns the average latency with unit, or "N/A".
func (s RunSummary) AvgLatencyDisplay() string {
	if !s.HasLatency {
		return NotAvailable
	}
	return strconv.Itoa(s.AvgLatencyMS) + "ms"
}

// LabelCount is one entry of a distribution.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LocaleAggregate summarizes broken links for one locale.
type LocaleAggregate struct {
	Name   string `json:"name"`
	Broken int    `json:"broken"`

	// Total is the number of URLs checked for the locale. When Estimated is
	// true it is the even split ceil(totalUrls / distinct locales).
	Total       int     `json:"total"`
	SuccessRate float64 `json:"successRate"`
	Estimated   bool    `json:"estimated"`
}

// TrendSeries is an ordered set of trend points with its origin.
type TrendSeries struct {
	Source    string       `json:"source"`
	Synthetic bool         `json:"synthetic"`
	Points    []TrendPoint `json:"points"`
}

// Empty reports whether the series has no points.
func (s TrendSeries) Empty() bool {
	return len(s.Points) == 0
}
