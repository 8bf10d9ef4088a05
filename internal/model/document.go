package model

// Document is the Result Document written by the external link checker
// (results.json). Optional numeric fields are pointers so that a missing
// field can be told apart from an explicit zero.
type Document struct {
	// LastUpdated is the ISO-8601 timestamp of the last checker run.
	LastUpdated string `json:"lastUpdated"`

	// TotalRuns is the number of historical checker runs.
	TotalRuns *int `json:"totalRuns,omitempty"`

	// TotalURLs is the number of URLs checked in the last run.
	TotalURLs *int `json:"totalUrls,omitempty"`

	// BrokenLinks is the number of broken links found in the last run.
	BrokenLinks *int `json:"brokenLinks,omitempty"`

	// SuccessRate is the percentage of healthy URLs (0-100).
	SuccessRate *float64 `json:"successRate,omitempty"`

	// BrokenLinksList holds one record per broken link.
	BrokenLinksList []RawLink `json:"brokenLinksList"`

	// Trends is the optional historical series kept by the checker.
	Trends []TrendPoint `json:"trends,omitempty"`

	// ErrorDistribution is an optional precomputed label -> count map.
	ErrorDistribution map[string]int `json:"errorDistribution,omitempty"`

	// ResponseTimeDistribution is an optional precomputed bucket -> count map.
	ResponseTimeDistribution map[string]int `json:"responseTimeDistribution,omitempty"`

	// Locales is an optional precomputed per-locale summary.
	Locales []LocaleSummary `json:"locales,omitempty"`
}

// RawLink is a broken-link record exactly as it appears in the document.
type RawLink struct {
	URL         string     `json:"url"`
	Locale      string     `json:"locale,omitempty"`
	StatusCode  StatusCode `json:"statusCode"`
	ErrorType   string     `json:"errorType,omitempty"`
	Source      string     `json:"source,omitempty"`
	Text        string     `json:"text,omitempty"`
	LastChecked string     `json:"lastChecked,omitempty"`
	Latency     *float64   `json:"latency,omitempty"`

	// IsDeepCheck is the flag as the checker writes it. DeepCheck is the
	// older spelling; either one marks the record.
	IsDeepCheck bool `json:"isDeepCheck,omitempty"`
	DeepCheck   bool `json:"deepCheck,omitempty"`
}

// LocaleSummary is a per-locale summary supplied by the checker.
type LocaleSummary struct {
	Name        string  `json:"name"`
	Total       int     `json:"total"`
	Broken      int     `json:"broken"`
	SuccessRate float64 `json:"successRate"`
}

// TrendPoint is one point of the broken-link history.
type TrendPoint struct {
	// Date is the day (or timestamp) the point was measured.
	Date string `json:"date"`

	// BrokenLinks is the broken-link count at Date.
	BrokenLinks int `json:"brokenLinks"`

	// ErrorDistribution optionally breaks BrokenLinks down by error label.
	ErrorDistribution map[string]int `json:"errorDistribution,omitempty"`

	// TotalURLs is the number of URLs checked at Date, when known.
	TotalURLs int `json:"totalUrls,omitempty"`

	// SuccessRate is the success rate at Date, when known.
	SuccessRate float64 `json:"successRate,omitempty"`
}

// IntValue dereferences an optional integer field.
func IntValue(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// FloatValue dereferences an optional float field.
func FloatValue(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 {
	return &v
}
