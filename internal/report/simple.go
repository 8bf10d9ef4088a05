package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/linkboard/internal/analytics"
	"github.com/nao1215/linkboard/internal/model"
	"github.com/nao1215/linkboard/internal/pipeline"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections without data are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeDistribution(&sb, summary.Dataset)
	w.writeLocales(&sb, summary.Dataset)
	w.writeAlerts(&sb, summary.Analytics)
	w.writeDomains(&sb, summary.Analytics)
	w.writeTrend(&sb, summary.Analytics)
	if w.verbose {
		w.writeSlowest(&sb, summary.Analytics)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func banner(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with the run summary.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *Summary) {
	ds := summary.Dataset
	s := ds.Summary
	h := summary.Analytics.Health

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        BROKEN LINK REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Source:        %s\n", ds.Source)
	fmt.Fprintf(sb, "Last Run:      %s\n", model.FormatTimestamp(s.LastUpdated))
	fmt.Fprintf(sb, "Total URLs:    %d\n", s.TotalURLs)
	fmt.Fprintf(sb, "Broken Links:  %d\n", s.BrokenLinks)
	fmt.Fprintf(sb, "Success Rate:  %.1f%%\n", s.SuccessRate)
	fmt.Fprintf(sb, "Total Runs:    %d\n", s.TotalRuns)
	fmt.Fprintf(sb, "Avg Latency:   %s\n", s.AvgLatencyDisplay())
	fmt.Fprintf(sb, "Health:        %.1f (%s)\n", h.Score, h.Grade)

	if ds.Degraded {
		fmt.Fprintf(sb, "Status:        DEFAULT DATA - %s\n", ds.DegradedReason)
	}
	sb.WriteString("\n")
}

// writeDistribution writes the error and response-time distributions.
func (w *SimpleWriter) writeDistribution(sb *strings.Builder, ds *model.Dataset) {
	if len(ds.ErrorDistribution) > 0 || w.showEmpty {
		banner(sb, "ERROR DISTRIBUTION")
		if len(ds.ErrorDistribution) == 0 {
			sb.WriteString("  No errors recorded\n")
		}
		for _, e := range ds.ErrorDistribution {
			fmt.Fprintf(sb, "  %-16s %d\n", e.Label, e.Count)
		}
		sb.WriteString("\n")
	}

	banner(sb, "RESPONSE TIMES")
	for _, b := range ds.ResponseTimes {
		fmt.Fprintf(sb, "  %-6s %d\n", b.Label, b.Count)
	}
	sb.WriteString("\n")
}

// writeLocales writes the locale table.
func (w *SimpleWriter) writeLocales(sb *strings.Builder, ds *model.Dataset) {
	if len(ds.Locales) == 0 && !w.showEmpty {
		return
	}

	banner(sb, "LOCALES")
	if len(ds.Locales) == 0 {
		sb.WriteString("  No locale data\n\n")
		return
	}

	fmt.Fprintf(sb, "  %-20s  %8s  %14s  %8s\n", "Locale", "Broken", "Total", "Success")
	for _, l := range ds.Locales {
		fmt.Fprintf(sb, "  %-20s  %8d  %14s  %7.1f%%\n",
			truncateString(l.Name, 20), l.Broken, localeTotal(l), l.SuccessRate)
	}
	sb.WriteString("\n")
}

// writeAlerts writes the critical alerts.
func (w *SimpleWriter) writeAlerts(sb *strings.Builder, a *analytics.Report) {
	if len(a.Alerts) == 0 && !w.showEmpty {
		return
	}

	banner(sb, "CRITICAL ALERTS")
	if len(a.Alerts) == 0 {
		sb.WriteString("  No critical alerts\n\n")
		return
	}

	for _, alert := range a.Alerts {
		fmt.Fprintf(sb, "  [%s] %s  %s\n", w.priorityIndicator(alert.Priority), alert.Link.StatusCode.Display(), alert.Link.URL)
		fmt.Fprintf(sb, "    Impact: %s\n", alert.Impact)
		if alert.Link.Source != "" {
			fmt.Fprintf(sb, "    Source: %s\n", alert.Link.Source)
		}
	}
	sb.WriteString("\n")
}

// priorityIndicator returns a visual indicator for the alert priority.
func (w *SimpleWriter) priorityIndicator(p analytics.Priority) string {
	switch p {
	case analytics.PriorityCritical:
		return "!!!"
	case analytics.PriorityHigh:
		return "!!"
	case analytics.PriorityMedium:
		return "!"
	default:
		return "?"
	}
}

// writeDomains writes the top failing domains.
func (w *SimpleWriter) writeDomains(sb *strings.Builder, a *analytics.Report) {
	if len(a.FailingDomains) == 0 && !w.showEmpty {
		return
	}

	banner(sb, "TOP FAILING DOMAINS")
	if len(a.FailingDomains) == 0 {
		sb.WriteString("  None\n")
	}
	for _, d := range a.FailingDomains {
		fmt.Fprintf(sb, "  %-40s %d\n", truncateString(d.Domain, 40), d.Count)
	}
	sb.WriteString("\n")
}

// writeTrend writes the trend summary and anomalies.
func (w *SimpleWriter) writeTrend(sb *strings.Builder, a *analytics.Report) {
	if a.Trend == nil && !w.showEmpty {
		return
	}

	banner(sb, "TREND")
	if a.Trend == nil {
		sb.WriteString("  No trend data\n\n")
		return
	}

	t := a.Trend
	fmt.Fprintf(sb, "  Period:    %s .. %s (%d points)\n", t.StartDate, t.EndDate, t.Points)
	fmt.Fprintf(sb, "  Broken:    %d -> %d (%+d, %+.2f%%)\n", t.Start, t.End, t.Change, t.ChangePercent)
	fmt.Fprintf(sb, "  Direction: %s\n", t.Direction)
	fmt.Fprintf(sb, "  Range:     %d .. %d (avg %.2f)\n", t.Lowest, t.Highest, t.Average)

	for _, an := range a.Anomalies {
		fmt.Fprintf(sb, "  * %s: %s, %d broken (%.2f%% from mean)\n", an.Date, an.Type, an.BrokenLinks, an.DeviationPercent)
	}
	sb.WriteString("\n")
}

// writeSlowest writes the slowest links.
func (w *SimpleWriter) writeSlowest(sb *strings.Builder, a *analytics.Report) {
	if len(a.SlowestLinks) == 0 {
		return
	}

	banner(sb, "SLOWEST LINKS")
	for _, l := range a.SlowestLinks {
		fmt.Fprintf(sb, "  %8s  %s\n", l.LatencyDisplay()+"ms", l.URL)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by linkboard\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// WriteComparison outputs a run comparison in human-readable format.
func (w *SimpleWriter) WriteComparison(c *analytics.Comparison) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	banner(&sb, "RUN COMPARISON")

	fmt.Fprintf(&sb, "  Previous: %s (%s)\n", runLabel(c.Previous), c.Previous.Source)
	fmt.Fprintf(&sb, "  Current:  %s (%s)\n\n", runLabel(c.Current), c.Current.Source)
	fmt.Fprintf(&sb, "  Status:       %s\n", formatDirection(c.Change.Direction))
	fmt.Fprintf(&sb, "  Broken Links: %d -> %d (%s)\n", c.Previous.BrokenLinks, c.Current.BrokenLinks, formatDelta(c.Change.BrokenDelta))
	fmt.Fprintf(&sb, "  Total URLs:   %d -> %d (%s)\n", c.Previous.TotalURLs, c.Current.TotalURLs, formatDelta(c.Change.TotalURLsDelta))
	fmt.Fprintf(&sb, "  Success Rate: %.1f%% -> %.1f%% (%+.1f)\n\n", c.Previous.SuccessRate, c.Current.SuccessRate, c.Change.SuccessRateDelta)

	writeLinkLines(&sb, "New broken links", c.NewBroken)
	writeLinkLines(&sb, "Resolved links", c.Resolved)
	fmt.Fprintf(&sb, "Unchanged: %d\n", c.UnchangedCount)

	return w.output.Write([]byte(sb.String()))
}

func writeLinkLines(sb *strings.Builder, title string, links []model.BrokenLink) {
	fmt.Fprintf(sb, "%s (%d):\n", title, len(links))
	for _, l := range links {
		fmt.Fprintf(sb, "  [%s] %s (%s)\n", l.StatusCode.Display(), l.URL, l.Locale)
	}
	sb.WriteString("\n")
}

// WriteLinks outputs one page of the broken-link table.
func (w *SimpleWriter) WriteLinks(view *pipeline.View) (int, error) {
	var sb strings.Builder

	if view.Empty() {
		sb.WriteString("No broken links match the current filters.\n")
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "%-14s  %-50s  %-12s  %-14s  %8s\n", "Status", "URL", "Locale", "Error Type", "Latency")
	sb.WriteString(strings.Repeat("-", 106))
	sb.WriteString("\n")
	for _, l := range view.Page {
		fmt.Fprintf(&sb, "%-14s  %-50s  %-12s  %-14s  %8s\n",
			truncateString(l.StatusCode.Display(), 14),
			truncateString(l.URL, 50),
			truncateString(l.Locale, 12),
			truncateString(l.ErrorType, 14),
			l.LatencyDisplay(),
		)
		if w.verbose {
			fmt.Fprintf(&sb, "  source: %s  checked: %s\n", l.Source, l.LastCheckedDisplay())
		}
	}

	p := view.Pagination
	fmt.Fprintf(&sb, "\nShowing %d-%d of %d (page %d of %d", p.Start, p.End, p.TotalItems, p.Page, p.TotalPages)
	if view.Query.Filtered() {
		fmt.Fprintf(&sb, ", filtered from %d", view.Unfiltered)
	}
	sb.WriteString(")\n")

	return w.output.Write([]byte(sb.String()))
}
