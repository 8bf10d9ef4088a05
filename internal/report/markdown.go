package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/linkboard/internal/analytics"
	"github.com/nao1215/linkboard/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)
	ds := summary.Dataset
	a := summary.Analytics

	w.writeHeader(md, summary)
	w.writeHealth(md, ds, a)
	w.writeDistribution(md, ds)
	w.writeLocales(md, ds, a)
	w.writeAlerts(md, a)
	w.writeDomains(md, a)
	w.writeTrend(md, ds, a)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	ds := summary.Dataset
	s := ds.Summary

	md.H1("Broken Link Report")
	md.PlainText("")

	if ds.Degraded {
		md.Cautionf("Showing default data: %s (%s).", ds.DegradedReason, ds.Source)
		md.PlainText("")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Source", "`" + ds.Source + "`"},
			{"Last Run", model.FormatTimestamp(s.LastUpdated)},
			{"Total URLs", strconv.Itoa(s.TotalURLs)},
			{"Broken Links", strconv.Itoa(s.BrokenLinks)},
			{"Success Rate", fmt.Sprintf("%.1f%%", s.SuccessRate)},
			{"Total Runs", strconv.Itoa(s.TotalRuns)},
			{"Avg Latency", s.AvgLatencyDisplay()},
		},
	})
	md.PlainText("")
}

// writeHealth writes the health score with an alert matching the grade.
func (w *MarkdownWriter) writeHealth(md *markdown.Markdown, ds *model.Dataset, a *analytics.Report) {
	md.H2("Health")
	md.PlainText("")
	md.PlainTextf("**Score:** %.1f / 100 (grade %s)", a.Health.Score, a.Health.Grade)
	md.PlainText("")

	critical := 0
	for _, alert := range a.Alerts {
		if alert.Priority == analytics.PriorityCritical {
			critical++
		}
	}

	switch {
	case critical > 0:
		md.Cautionf("%d server error(s) on monitored pages require immediate attention.", critical)
	case len(a.Alerts) > 0:
		md.Warningf("%d broken link(s) found on critical pages.", len(a.Alerts))
	case ds.Summary.BrokenLinks > 0:
		md.Note("No broken links on critical pages.")
	default:
		md.Tip("No broken links detected.")
	}
	md.PlainText("")
}

// writeDistribution writes the error and response-time distributions.
func (w *MarkdownWriter) writeDistribution(md *markdown.Markdown, ds *model.Dataset) {
	md.H2("Error Distribution")
	md.PlainText("")

	if len(ds.ErrorDistribution) == 0 {
		md.PlainText("No errors recorded.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(ds.ErrorDistribution))
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Errors by Status"),
			piechart.WithShowData(true),
		)
		for i, e := range ds.ErrorDistribution {
			rows[i] = []string{e.Label, strconv.Itoa(e.Count)}
			chart.LabelAndIntValue(e.Label, uint64(e.Count)) //nolint:gosec // counts are never negative
		}
		md.Table(markdown.TableSet{Header: []string{"Status", "Count"}, Rows: rows})
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	md.H2("Response Times")
	md.PlainText("")
	rows := make([][]string, len(ds.ResponseTimes))
	for i, b := range ds.ResponseTimes {
		rows[i] = []string{b.Label, strconv.Itoa(b.Count)}
	}
	md.Table(markdown.TableSet{Header: []string{"Bucket", "Count"}, Rows: rows})
	md.PlainText("")
}

// writeLocales writes the locale table.
func (w *MarkdownWriter) writeLocales(md *markdown.Markdown, ds *model.Dataset, a *analytics.Report) {
	md.H2("Locales")
	md.PlainText("")

	if len(ds.Locales) == 0 {
		md.PlainText("No locale data.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(ds.Locales))
	for i, l := range ds.Locales {
		rows[i] = []string{
			l.Name,
			strconv.Itoa(l.Broken),
			localeTotal(l),
			fmt.Sprintf("%.1f%%", l.SuccessRate),
			a.LocaleGrades[l.Name],
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Locale", "Broken", "Total", "Success Rate", "Grade"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlerts writes the critical alerts table.
func (w *MarkdownWriter) writeAlerts(md *markdown.Markdown, a *analytics.Report) {
	md.H2("Critical Alerts")
	md.PlainText("")

	if len(a.Alerts) == 0 {
		md.PlainText("No critical alerts.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(a.Alerts))
	for i, alert := range a.Alerts {
		rows[i] = []string{
			alert.Priority.String(),
			alert.Impact,
			alert.Link.StatusCode.Display(),
			truncateString(alert.Link.URL, 60),
			truncateString(alert.Link.Source, 40),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Priority", "Impact", "Status", "URL", "Source"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDomains writes the top failing domains.
func (w *MarkdownWriter) writeDomains(md *markdown.Markdown, a *analytics.Report) {
	if len(a.FailingDomains) == 0 {
		return
	}

	md.H2("Top Failing Domains")
	md.PlainText("")
	items := make([]string, len(a.FailingDomains))
	for i, d := range a.FailingDomains {
		items[i] = fmt.Sprintf("`%s`: %d", d.Domain, d.Count)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeTrend writes the trend summary and anomalies.
func (w *MarkdownWriter) writeTrend(md *markdown.Markdown, ds *model.Dataset, a *analytics.Report) {
	md.H2("Trend")
	md.PlainText("")

	if a.Trend == nil {
		md.PlainText("No trend data.")
		md.PlainText("")
		return
	}

	t := a.Trend
	md.PlainTextf("%s to %s (%d point(s), source: %s): %d to %d broken links, %s (%+.2f%%).",
		t.StartDate, t.EndDate, t.Points, ds.Trends.Source, t.Start, t.End, t.Direction, t.ChangePercent)
	md.PlainText("")

	if len(a.Anomalies) > 0 {
		rows := make([][]string, len(a.Anomalies))
		for i, an := range a.Anomalies {
			rows[i] = []string{an.Date, strconv.Itoa(an.BrokenLinks), an.Type, fmt.Sprintf("%.2f%%", an.DeviationPercent)}
		}
		md.H3("Anomalies")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Date", "Broken", "Type", "Deviation"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [linkboard](https://github.com/nao1215/linkboard)*")
}

// WriteComparison outputs a run comparison in Markdown format.
func (w *MarkdownWriter) WriteComparison(c *analytics.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Run Comparison")
	md.PlainText("")
	md.PlainTextf("**Status:** %s", formatDirection(c.Change.Direction))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Run", runLabel(c.Previous), runLabel(c.Current), "-"},
			{"Total URLs", strconv.Itoa(c.Previous.TotalURLs), strconv.Itoa(c.Current.TotalURLs), formatDelta(c.Change.TotalURLsDelta)},
			{"Broken Links", strconv.Itoa(c.Previous.BrokenLinks), strconv.Itoa(c.Current.BrokenLinks), formatDelta(c.Change.BrokenDelta)},
			{"Success Rate", fmt.Sprintf("%.1f%%", c.Previous.SuccessRate), fmt.Sprintf("%.1f%%", c.Current.SuccessRate), fmt.Sprintf("%+.1f", c.Change.SuccessRateDelta)},
		},
	})
	md.PlainText("")

	w.writeLinkList(md, fmt.Sprintf("New Broken Links (%d)", len(c.NewBroken)), c.NewBroken)
	w.writeLinkList(md, fmt.Sprintf("Resolved Links (%d)", len(c.Resolved)), c.Resolved)

	md.PlainTextf("Unchanged: %d", c.UnchangedCount)
	md.PlainText("")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeLinkList(md *markdown.Markdown, title string, links []model.BrokenLink) {
	md.H2(title)
	md.PlainText("")
	if len(links) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(links))
	for i, l := range links {
		rows[i] = []string{l.StatusCode.Display(), truncateString(l.URL, 60), l.Locale, l.ErrorType}
	}
	md.Table(markdown.TableSet{Header: []string{"Status", "URL", "Locale", "Error Type"}, Rows: rows})
	md.PlainText("")
}

func runLabel(m analytics.RunMetadata) string {
	label := model.FormatTimestamp(m.LastUpdated)
	if m.ID > 0 {
		label = "#" + strconv.FormatInt(m.ID, 10) + " " + label
	}
	return label
}

// formatDelta formats a count change with an explicit sign.
func formatDelta(delta int) string {
	switch {
	case delta > 0:
		return "+" + strconv.Itoa(delta)
	case delta < 0:
		return strconv.Itoa(delta)
	default:
		return "0"
	}
}

// formatDirection returns a human-readable comparison direction.
func formatDirection(direction string) string {
	switch direction {
	case analytics.DirectionImproved:
		return "Improved (fewer broken links)"
	case analytics.DirectionWorsened:
		return "Worsened (more broken links)"
	default:
		return "Unchanged"
	}
}
