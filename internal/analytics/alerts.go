package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nao1215/linkboard/internal/model"
)

// DefaultAlertLimit caps the number of critical alerts.
const DefaultAlertLimit = 10

// DefaultCriticalKeywords mark source pages whose broken links are critical.
func DefaultCriticalKeywords() []string {
	return []string{"homepage", "pricing", "signup", "login"}
}

// Alert is a broken link that needs immediate attention.
type Alert struct {
	Link     model.BrokenLink `json:"link"`
	Priority Priority         `json:"priority"`
	Impact   string           `json:"impact"`
}

// AlertOptions controls CriticalAlerts.
type AlertOptions struct {
	// Keywords are matched case-insensitively against the source page.
	// Nil means DefaultCriticalKeywords.
	Keywords []string

	// Limit caps the result. Zero means DefaultAlertLimit; negative means
	// no limit.
	Limit int
}

// CriticalAlerts selects the broken links on critical pages, server errors
// (status 500 and above) and links classified "Server Error". The result is
// ordered by priority, then by the priority sort of the table, and capped.
func CriticalAlerts(links []model.BrokenLink, opts AlertOptions) []Alert {
	keywords := opts.Keywords
	if keywords == nil {
		keywords = DefaultCriticalKeywords()
	}
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultAlertLimit
	}

	alerts := []Alert{}
	for _, l := range links {
		if !isCritical(l, keywords) {
			continue
		}
		alerts = append(alerts, Alert{
			Link:     l,
			Priority: alertPriority(l),
			Impact:   alertImpact(l),
		})
	}

	slices.SortStableFunc(alerts, func(a, b Alert) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Link.Priority(), b.Link.Priority()); c != 0 {
			return c
		}
		return strings.Compare(a.Link.URL, b.Link.URL)
	})

	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts
}

func isCritical(l model.BrokenLink, keywords []string) bool {
	if isServerFailure(l) {
		return true
	}
	source := strings.ToLower(l.Source)
	for _, k := range keywords {
		if k != "" && strings.Contains(source, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func isServerFailure(l model.BrokenLink) bool {
	return (l.StatusCode.IsNumeric() && l.StatusCode.Code >= 500) || l.ErrorType == model.ErrorTypeServerError
}

func alertPriority(l model.BrokenLink) Priority {
	source := strings.ToLower(l.Source)
	switch {
	case l.StatusCode.IsNumeric() && l.StatusCode.Code >= 500:
		return PriorityCritical
	case strings.Contains(source, "homepage"), strings.Contains(source, "pricing"):
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

func alertImpact(l model.BrokenLink) string {
	source := strings.ToLower(l.Source)
	for _, m := range impactByKeyword {
		if strings.Contains(source, m.keyword) {
			return m.impact
		}
	}
	if isServerFailure(l) {
		return ImpactServerError
	}
	return ImpactGeneral
}
