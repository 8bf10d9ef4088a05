package analytics

import (
	"github.com/nao1215/linkboard/internal/model"
)

// Options controls Analyze. Zero values select the defaults.
type Options struct {
	AnomalyThreshold float64
	TrendDays        int
	Alerts           AlertOptions
	DomainLimit      int
	SlowestLimit     int
}

// Report is the full set of indicators for one dataset.
type Report struct {
	Health          Health             `json:"health"`
	Anomalies       []Anomaly          `json:"anomalies"`
	Trend           *TrendSummary      `json:"trend,omitempty"`
	Alerts          []Alert            `json:"alerts"`
	FailingDomains  []DomainCount      `json:"failingDomains"`
	SlowestLinks    []model.BrokenLink `json:"slowestLinks"`
	ErrorTypes      []ErrorTypeStat    `json:"errorTypes"`
	LocaleGrades    map[string]string  `json:"localeGrades"`
	SyntheticTrends bool               `json:"syntheticTrends,omitempty"`
}

// Analyze computes every indicator for ds. Anomalies and the trend summary
// only use the real trend series; a simulated series is never analyzed.
func Analyze(ds *model.Dataset, opts Options) *Report {
	threshold := opts.AnomalyThreshold
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}
	days := opts.TrendDays
	if days <= 0 {
		days = DefaultTrendDays
	}
	domains := opts.DomainLimit
	if domains == 0 {
		domains = DefaultDomainLimit
	}
	slowest := opts.SlowestLimit
	if slowest == 0 {
		slowest = DefaultSlowestLimit
	}

	r := &Report{
		Health:          HealthOf(ds.Summary),
		Anomalies:       []Anomaly{},
		Alerts:          CriticalAlerts(ds.Links, opts.Alerts),
		FailingDomains:  FailingDomains(ds.Links, domains),
		SlowestLinks:    SlowestLinks(ds.Links, slowest),
		ErrorTypes:      ErrorTypeBreakdown(ds.Links),
		LocaleGrades:    make(map[string]string, len(ds.Locales)),
		SyntheticTrends: ds.SyntheticTrends != nil,
	}

	if !ds.Trends.Synthetic {
		r.Anomalies = DetectAnomalies(ds.Trends.Points, threshold)
		if s, ok := SummarizeTrend(ds.Trends.Points, days); ok {
			r.Trend = &s
		}
	}

	for _, l := range ds.Locales {
		r.LocaleGrades[l.Name] = Grade(l.SuccessRate)
	}
	return r
}
