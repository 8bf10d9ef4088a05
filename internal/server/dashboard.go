package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/nao1215/linkboard/internal/analytics"
	"github.com/nao1215/linkboard/internal/model"
	"github.com/nao1215/linkboard/internal/pipeline"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

// Dashboard views selected with the view parameter.
const (
	viewAll     = ""
	viewLinks   = "links"
	viewLocales = "locales"
)

// Trend chart size in SVG user units.
const (
	chartWidth  = 600
	chartHeight = 160
)

// tableColumns are the broken-link table columns in display order.
var tableColumns = []struct {
	label  string
	column pipeline.SortColumn
}{
	{"Status", pipeline.SortStatus},
	{"URL", pipeline.SortURL},
	{"Locale", pipeline.SortLocale},
	{"Error Type", pipeline.SortErrorType},
	{"Source", pipeline.SortSource},
	{"Text", pipeline.SortText},
	{"Last Checked", pipeline.SortLastChecked},
	{"Latency (ms)", pipeline.SortLatency},
}

// localeColumnLabels are the locale table headers.
var localeColumnLabels = map[pipeline.LocaleColumn]string{
	pipeline.LocaleByName:        "Locale",
	pipeline.LocaleByBroken:      "Broken",
	pipeline.LocaleByTotal:       "Total",
	pipeline.LocaleBySuccessRate: "Success Rate",
}

type dashboardRenderer struct {
	tmpl *template.Template
}

func newDashboardRenderer() (*dashboardRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, err
	}
	return &dashboardRenderer{tmpl: tmpl}, nil
}

func (d *dashboardRenderer) render(data *dashboardData) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type dashboardData struct {
	Base           string
	Version        string
	GeneratedAt    string
	Source         string
	Degraded       bool
	DegradedReason string
	View           string
	Tabs           []navLink

	KPIs          []kpi
	Trend         trendChart
	Errors        []bar
	ResponseTimes []bar
	Domains       []bar
	ChartJSON     template.JS

	Filters    filterForm
	Columns    []columnHeader
	Rows       []linkRow
	Empty      bool
	Total      int
	Unfiltered int
	Pager      pager
	ExportHref string

	LocaleColumns []columnHeader
	Locales       []localeView
	Alerts        []alertView
	Anomalies     []analytics.Anomaly
}

// ShowOverview reports whether charts and alerts are shown.
func (d *dashboardData) ShowOverview() bool { return d.View == viewAll }

// ShowLinks reports whether the broken-link table is shown.
func (d *dashboardData) ShowLinks() bool { return d.View == viewAll || d.View == viewLinks }

// ShowLocales reports whether the locale table is shown.
func (d *dashboardData) ShowLocales() bool { return d.View == viewAll || d.View == viewLocales }

type navLink struct {
	Label  string
	Href   string
	Active bool
}

type kpi struct {
	ID     string
	Label  string
	Value  string
	Detail string
}

type trendChart struct {
	Simulated bool
	Source    string
	Empty     bool
	Polyline  string
	Points    []trendPointView
	Min       int
	Max       int
	Summary   *analytics.TrendSummary
}

type trendPointView struct {
	Date        string
	BrokenLinks int
	X           string
	Y           string
}

type bar struct {
	Label   string
	Count   int
	Percent string
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type filterForm struct {
	Action    string
	View      string
	Sort      string
	Dir       string
	Search    string
	Locales   []option
	Statuses  []option
	Types     []option
	Scopes    []option
	ClearHref string
	Active    bool
}

type columnHeader struct {
	Label  string
	Href   string
	Active bool
	Arrow  string
}

type linkRow struct {
	Status      string
	StatusClass string
	URL         string
	Locale      string
	ErrorType   string
	Source      string
	Text        string
	LastChecked string
	Latency     string
}

type pageLink struct {
	Number  int
	Href    string
	Current bool
}

type pager struct {
	Show       bool
	Page       int
	TotalPages int
	Start      int
	End        int
	HasPrev    bool
	HasNext    bool
	PrevHref   string
	NextHref   string
	Pages      []pageLink
}

type localeView struct {
	Name        string
	Broken      int
	Total       int
	Estimated   bool
	SuccessRate string
	Grade       string
}

type alertView struct {
	Priority      string
	PriorityClass string
	Impact        string
	Status        string
	URL           string
	Source        string
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := lenientQuery(values, s.cfg.PageSize)

	ds := s.dataset(r)
	view, err := pipeline.Apply(r.Context(), ds.Links, q, pipeline.WithLogger(s.logger))
	if err != nil {
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	data := s.buildDashboard(ds, view, values)
	body, err := s.dashboard.render(data)
	if err != nil {
		s.logger.Error("failed to render dashboard", "error", err, "request_id", RequestIDFromContext(r.Context()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// linker builds dashboard URLs that keep the view and locale sort.
type linker struct {
	base  string
	extra url.Values
}

func (l linker) href(q pipeline.Query) string {
	v := EncodeQuery(q)
	for k, vals := range l.extra {
		for _, val := range vals {
			v.Add(k, val)
		}
	}
	if len(v) == 0 {
		return l.base
	}
	return l.base + "?" + v.Encode()
}

func (s *Server) buildDashboard(ds *model.Dataset, view *pipeline.View, values url.Values) *dashboardData {
	a := analytics.Analyze(ds, s.analytics)
	base := s.cfg.NormalizedBasePath()

	viewName := values.Get(paramView)
	if viewName != viewLinks && viewName != viewLocales {
		viewName = viewAll
	}

	localeColumn, err := pipeline.ParseLocaleColumn(values.Get(paramLocaleBy))
	if err != nil {
		localeColumn = pipeline.LocaleByBroken
	}
	localeDir := pipeline.DefaultLocaleDirection(localeColumn)
	if d := values.Get(paramLocaleDir); d != "" {
		localeDir = pipeline.ParseDirection(d)
	}

	extra := url.Values{}
	if viewName != viewAll {
		extra.Set(paramView, viewName)
	}
	if values.Get(paramLocaleBy) != "" {
		extra.Set(paramLocaleBy, string(localeColumn))
		extra.Set(paramLocaleDir, string(localeDir))
	}
	links := linker{base: base, extra: extra}

	data := &dashboardData{
		Base:           base,
		Version:        s.version,
		GeneratedAt:    s.now().UTC().Format(model.DisplayTimeLayout),
		Source:         ds.Source,
		Degraded:       ds.Degraded,
		DegradedReason: ds.DegradedReason,
		View:           viewName,
		KPIs:           buildKPIs(ds, a),
		Trend:          buildTrend(ds, a),
		Errors:         countBars(ds.ErrorDistribution),
		ResponseTimes:  countBars(ds.ResponseTimes),
		Domains:        domainBars(a.FailingDomains),
		Filters:        buildFilters(ds, view.Query, viewName, links),
		Columns:        buildColumns(view.Query, links),
		Rows:           buildRows(view.Page),
		Empty:          view.Empty(),
		Total:          view.Total(),
		Unfiltered:     view.Unfiltered,
		Pager:          buildPager(view, links),
		ExportHref:     base + "export.csv" + exportQuery(view.Query),
		Locales:        buildLocales(pipeline.SortLocales(ds.Locales, localeColumn, localeDir)),
		Alerts:         buildAlerts(a.Alerts),
		Anomalies:      a.Anomalies,
	}
	data.Tabs = buildTabs(view.Query, viewName, base, extra)
	data.LocaleColumns = buildLocaleColumns(view.Query, localeColumn, localeDir, base, viewName)
	data.ChartJSON = chartJSON(ds, data.Trend)
	return data
}

func buildTabs(q pipeline.Query, current, base string, extra url.Values) []navLink {
	tabs := []struct{ label, view string }{
		{"Overview", viewAll},
		{"Broken Links", viewLinks},
		{"Locales", viewLocales},
	}
	out := make([]navLink, len(tabs))
	for i, t := range tabs {
		e := url.Values{}
		if t.view != viewAll {
			e.Set(paramView, t.view)
		}
		if v := extra.Get(paramLocaleBy); v != "" {
			e.Set(paramLocaleBy, v)
			e.Set(paramLocaleDir, extra.Get(paramLocaleDir))
		}
		out[i] = navLink{
			Label:  t.label,
			Href:   linker{base: base, extra: e}.href(q),
			Active: t.view == current,
		}
	}
	return out
}

func buildKPIs(ds *model.Dataset, a *analytics.Report) []kpi {
	s := ds.Summary
	lastRun := model.FormatTimestamp(s.LastUpdated)
	return []kpi{
		{ID: "kpi-total", Label: "Total URLs", Value: strconv.Itoa(s.TotalURLs)},
		{ID: "kpi-broken", Label: "Broken Links", Value: strconv.Itoa(s.BrokenLinks)},
		{ID: "kpi-success", Label: "Success Rate", Value: fmt.Sprintf("%.1f%%", s.SuccessRate)},
		{ID: "kpi-runs", Label: "Total Runs", Value: strconv.Itoa(s.TotalRuns)},
		{ID: "kpi-last-run", Label: "Last Run", Value: lastRun},
		{ID: "kpi-latency", Label: "Avg Latency", Value: s.AvgLatencyDisplay()},
		{ID: "kpi-health", Label: "Health", Value: fmt.Sprintf("%.1f", a.Health.Score), Detail: "Grade " + a.Health.Grade},
	}
}

// buildTrend picks the series to draw: the real series when it has at
// least two points, otherwise the simulated series when enabled.
func buildTrend(ds *model.Dataset, a *analytics.Report) trendChart {
	series := ds.Trends
	if len(series.Points) < 2 && ds.SyntheticTrends != nil && len(ds.SyntheticTrends.Points) > 0 {
		series = *ds.SyntheticTrends
	}

	chart := trendChart{
		Simulated: series.Synthetic,
		Source:    series.Source,
		Empty:     len(series.Points) == 0,
	}
	if !series.Synthetic {
		chart.Summary = a.Trend
	}
	if chart.Empty {
		return chart
	}

	counts := make([]int, len(series.Points))
	for i, p := range series.Points {
		counts[i] = p.BrokenLinks
	}
	chart.Min = slices.Min(counts)
	chart.Max = slices.Max(counts)

	coords := make([]string, len(series.Points))
	for i, p := range series.Points {
		x := float64(chartWidth) / 2
		if len(series.Points) > 1 {
			x = float64(i) * chartWidth / float64(len(series.Points)-1)
		}
		y := float64(chartHeight) / 2
		if chart.Max > chart.Min {
			y = chartHeight - float64(p.BrokenLinks-chart.Min)/float64(chart.Max-chart.Min)*chartHeight
		}
		xs, ys := strconv.FormatFloat(x, 'f', 1, 64), strconv.FormatFloat(y, 'f', 1, 64)
		coords[i] = xs + "," + ys
		chart.Points = append(chart.Points, trendPointView{Date: p.Date, BrokenLinks: p.BrokenLinks, X: xs, Y: ys})
	}
	chart.Polyline = strings.Join(coords, " ")
	return chart
}

func countBars(counts []model.LabelCount) []bar {
	highest := 0
	for _, c := range counts {
		highest = max(highest, c.Count)
	}
	out := make([]bar, len(counts))
	for i, c := range counts {
		out[i] = bar{Label: c.Label, Count: c.Count, Percent: percentOf(c.Count, highest)}
	}
	return out
}

func domainBars(domains []analytics.DomainCount) []bar {
	counts := make([]model.LabelCount, len(domains))
	for i, d := range domains {
		counts[i] = model.LabelCount{Label: d.Domain, Count: d.Count}
	}
	return countBars(counts)
}

func percentOf(n, total int) string {
	if total <= 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(n)*100/float64(total), 'f', 1, 64)
}

func buildFilters(ds *model.Dataset, q pipeline.Query, viewName string, l linker) filterForm {
	var locales, statuses, types []string
	for _, link := range ds.Links {
		locales = append(locales, link.Locale)
		statuses = append(statuses, link.StatusCode.Display())
		types = append(types, link.ErrorType)
	}

	cleared := pipeline.StateFromQuery(q)
	cleared.ClearFilters()

	f := filterForm{
		Action:    l.base,
		View:      viewName,
		Search:    q.Search,
		Locales:   options(locales, q.Locale),
		Statuses:  options(statuses, q.Status),
		Types:     options(types, q.ErrorType),
		ClearHref: l.href(cleared.Query()),
		Active:    q.Filtered(),
		Scopes: []option{
			{Value: string(pipeline.ScopeAll), Label: "URL, source and text", Selected: q.Scope != pipeline.ScopeURL},
			{Value: string(pipeline.ScopeURL), Label: "URL only", Selected: q.Scope == pipeline.ScopeURL},
		},
	}
	if q.Sort != pipeline.SortDefault {
		f.Sort = string(q.Sort)
		f.Dir = string(q.Direction)
	}
	return f
}

// options returns the distinct non-empty values, sorted, with selected marked.
func options(values []string, selected string) []option {
	slices.Sort(values)
	values = slices.Compact(values)
	out := make([]option, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		out = append(out, option{Value: v, Label: v, Selected: v == selected})
	}
	return out
}

func buildColumns(q pipeline.Query, l linker) []columnHeader {
	out := make([]columnHeader, len(tableColumns))
	for i, c := range tableColumns {
		state := pipeline.StateFromQuery(q)
		state.ToggleSort(c.column)

		h := columnHeader{Label: c.label, Href: l.href(state.Query())}
		if q.Sort == c.column {
			h.Active = true
			h.Arrow = "▲"
			if q.Direction == pipeline.Descending {
				h.Arrow = "▼"
			}
		}
		out[i] = h
	}
	return out
}

func buildRows(links []model.BrokenLink) []linkRow {
	rows := make([]linkRow, len(links))
	for i, l := range links {
		rows[i] = linkRow{
			Status:      l.StatusCode.Display(),
			StatusClass: statusClass(l.StatusCode),
			URL:         l.URL,
			Locale:      l.Locale,
			ErrorType:   l.ErrorType,
			Source:      l.Source,
			Text:        l.Text,
			LastChecked: l.LastCheckedDisplay(),
			Latency:     l.LatencyDisplay(),
		}
	}
	return rows
}

func statusClass(s model.StatusCode) string {
	switch {
	case s.IsServerError():
		return "status-server"
	case s.IsClientError():
		return "status-client"
	default:
		return "status-other"
	}
}

func buildPager(view *pipeline.View, l linker) pager {
	p := view.Pagination
	pg := pager{
		Show:       p.Paginated(),
		Page:       p.Page,
		TotalPages: p.TotalPages,
		Start:      p.Start,
		End:        p.End,
		HasPrev:    p.HasPrev,
		HasNext:    p.HasNext,
	}

	at := func(n int) string {
		state := pipeline.StateFromQuery(view.Query)
		state.SetPage(n)
		return l.href(state.Query())
	}
	pg.PrevHref = at(p.Prev())
	pg.NextHref = at(p.Next())
	for _, n := range p.Window {
		pg.Pages = append(pg.Pages, pageLink{Number: n, Href: at(n), Current: n == p.Page})
	}
	return pg
}

// exportQuery encodes the filters and sort of q, without the page.
func exportQuery(q pipeline.Query) string {
	q.Page = 1
	v := EncodeQuery(q)
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func buildLocales(locales []model.LocaleAggregate) []localeView {
	out := make([]localeView, len(locales))
	for i, l := range locales {
		out[i] = localeView{
			Name:        l.Name,
			Broken:      l.Broken,
			Total:       l.Total,
			Estimated:   l.Estimated,
			SuccessRate: fmt.Sprintf("%.1f%%", l.SuccessRate),
			Grade:       analytics.Grade(l.SuccessRate),
		}
	}
	return out
}

func buildLocaleColumns(q pipeline.Query, current pipeline.LocaleColumn, dir pipeline.Direction, base, viewName string) []columnHeader {
	out := make([]columnHeader, 0, len(pipeline.LocaleColumns()))
	for _, c := range pipeline.LocaleColumns() {
		next := pipeline.DefaultLocaleDirection(c)
		if c == current {
			next = dir.Flip()
		}

		e := url.Values{}
		if viewName != viewAll {
			e.Set(paramView, viewName)
		}
		e.Set(paramLocaleBy, string(c))
		e.Set(paramLocaleDir, string(next))

		h := columnHeader{Label: localeColumnLabels[c], Href: linker{base: base, extra: e}.href(q)}
		if c == current {
			h.Active = true
			h.Arrow = "▲"
			if dir == pipeline.Descending {
				h.Arrow = "▼"
			}
		}
		out = append(out, h)
	}
	return out
}

func buildAlerts(alerts []analytics.Alert) []alertView {
	out := make([]alertView, len(alerts))
	for i, a := range alerts {
		out[i] = alertView{
			Priority:      a.Priority.String(),
			PriorityClass: "priority-" + strings.ToLower(a.Priority.String()),
			Impact:        a.Impact,
			Status:        a.Link.StatusCode.Display(),
			URL:           a.Link.URL,
			Source:        a.Link.Source,
		}
	}
	return out
}

// chartJSON embeds the chart series for client-side use.
func chartJSON(ds *model.Dataset, trend trendChart) template.JS {
	payload := map[string]any{
		"trend": map[string]any{
			"simulated": trend.Simulated,
			"points":    trend.Points,
		},
		"errorDistribution": ds.ErrorDistribution,
		"responseTimes":     ds.ResponseTimes,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return template.JS("{}")
	}
	// json.Marshal escapes <, > and &, so the payload cannot close the script element.
	return template.JS(data) //nolint:gosec // JSON produced by encoding/json
}
