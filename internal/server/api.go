package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nao1215/linkboard/internal/analytics"
	"github.com/nao1215/linkboard/internal/model"
	"github.com/nao1215/linkboard/internal/pipeline"
	"github.com/nao1215/linkboard/internal/report"
)

// summaryResponse is the body of GET /api/v1/summary.
type summaryResponse struct {
	Source         string                  `json:"source"`
	LoadedAt       time.Time               `json:"loadedAt"`
	Degraded       bool                    `json:"degraded"`
	DegradedReason string                  `json:"degradedReason,omitempty"`
	Summary        model.RunSummary        `json:"summary"`
	AvgLatency     string                  `json:"avgLatency"`
	Health         analytics.Health        `json:"health"`
	Trend          *analytics.TrendSummary `json:"trend,omitempty"`
	AlertCount     int                     `json:"alertCount"`
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	ds := s.dataset(r)
	a := analytics.Analyze(ds, s.analytics)

	writeJSON(w, http.StatusOK, summaryResponse{
		Source:         ds.Source,
		LoadedAt:       ds.LoadedAt,
		Degraded:       ds.Degraded,
		DegradedReason: ds.DegradedReason,
		Summary:        ds.Summary,
		AvgLatency:     ds.Summary.AvgLatencyDisplay(),
		Health:         a.Health,
		Trend:          a.Trend,
		AlertCount:     len(a.Alerts),
	})
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	ds := s.dataset(r)
	summary := report.NewSummary(ds, s.analytics, s.version, s.now())

	var buf bytes.Buffer
	if _, err := report.NewJSONWriter(&buf).Write(summary); err != nil {
		s.logger.Error("failed to render report", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	s.metrics.IncExport("json")
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) linksHandler(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query(), s.cfg.PageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := pipeline.Apply(r.Context(), s.dataset(r).Links, q, pipeline.WithLogger(s.logger))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}
	writeJSON(w, http.StatusOK, report.NewLinksPage(view))
}

// localeRow is one locale of GET /api/v1/locales.
type localeRow struct {
	model.LocaleAggregate
	Grade string `json:"grade"`
}

func (s *Server) localesHandler(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	column, err := pipeline.ParseLocaleColumn(values.Get(paramSort))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	direction := pipeline.DefaultLocaleDirection(column)
	if d := values.Get(paramDir); d != "" {
		direction = pipeline.ParseDirection(d)
	}

	ds := s.dataset(r)
	locales := pipeline.SortLocales(ds.Locales, column, direction)
	rows := make([]localeRow, len(locales))
	for i, l := range locales {
		rows[i] = localeRow{LocaleAggregate: l, Grade: analytics.Grade(l.SuccessRate)}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sort":      column,
		"direction": direction,
		"locales":   rows,
	})
}

func (s *Server) distributionHandler(w http.ResponseWriter, r *http.Request) {
	ds := s.dataset(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"errors":        ds.ErrorDistribution,
		"responseTimes": ds.ResponseTimes,
		"errorTypes":    analytics.ErrorTypeBreakdown(ds.Links),
	})
}

func (s *Server) trendsHandler(w http.ResponseWriter, r *http.Request) {
	ds := s.dataset(r)
	a := analytics.Analyze(ds, s.analytics)

	payload := map[string]any{
		"trends":    ds.Trends,
		"anomalies": a.Anomalies,
		"summary":   a.Trend,
	}
	if ds.SyntheticTrends != nil {
		payload["synthetic"] = ds.SyntheticTrends
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) alertsHandler(w http.ResponseWriter, r *http.Request) {
	ds := s.dataset(r)
	a := analytics.Analyze(ds, s.analytics)

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts":         a.Alerts,
		"failingDomains": a.FailingDomains,
		"slowestLinks":   a.SlowestLinks,
	})
}

func (s *Server) reloadHandler(w http.ResponseWriter, r *http.Request) {
	s.loader.Invalidate(s.cfg.Source)
	ds := s.dataset(r)

	s.logger.Info("dataset reloaded",
		"source", ds.Source,
		"degraded", ds.Degraded,
		"request_id", RequestIDFromContext(r.Context()),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"source":         ds.Source,
		"loadedAt":       ds.LoadedAt,
		"degraded":       ds.Degraded,
		"degradedReason": ds.DegradedReason,
		"brokenLinks":    ds.Summary.BrokenLinks,
	})
}

// exportHandler writes the whole filtered and sorted set as CSV, not just
// the requested page.
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	q := lenientQuery(r.URL.Query(), s.cfg.PageSize)
	view, err := pipeline.Apply(r.Context(), s.dataset(r).Links, q, pipeline.WithLogger(s.logger))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	var buf bytes.Buffer
	if _, err := report.NewCSVWriter(&buf).WriteLinks(view.Links); err != nil {
		s.logger.Error("failed to write CSV export", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "failed to write export")
		return
	}

	s.metrics.IncExport("csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.ExportFilename(s.now())+`"`)
	_, _ = w.Write(buf.Bytes())
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// readyHandler reports ready once the configured source loads without
// falling back to the default document.
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	ds := s.dataset(r)
	if ds.Degraded {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"reason": ds.DegradedReason,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func faviconHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
