package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/linkboard/internal/adapter"
	"github.com/nao1215/linkboard/internal/config"
	"github.com/nao1215/linkboard/internal/metrics"
	"github.com/nao1215/linkboard/internal/model"
)

var testNow = time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)

// testDocument returns a document with 25 broken links. Every fifth link
// is a 500 found on the homepage; the rest are 404s. Even indexes are "en",
// odd indexes "ja".
func testDocument() *model.Document {
	total, broken, runs := 1000, 25, 10
	rate := 97.5

	doc := &model.Document{
		LastUpdated: "2025-01-15T10:30:00Z",
		TotalRuns:   &runs,
		TotalURLs:   &total,
		BrokenLinks: &broken,
		SuccessRate: &rate,
		Trends: []model.TrendPoint{
			{Date: "2025-01-13", BrokenLinks: 30},
			{Date: "2025-01-14", BrokenLinks: 28},
			{Date: "2025-01-15", BrokenLinks: 25},
		},
	}
	for i := range broken {
		latency := float64(i * 300)
		link := model.RawLink{
			URL:         fmt.Sprintf("https://example.com/page-%02d", i),
			Locale:      "en",
			StatusCode:  model.NewStatusCode(404),
			ErrorType:   "Not Found",
			Source:      fmt.Sprintf("https://example.com/docs/%d", i),
			Text:        fmt.Sprintf("Link %d", i),
			LastChecked: "2025-01-15T10:30:00Z",
			Latency:     &latency,
		}
		if i%2 == 1 {
			link.Locale = "ja"
		}
		if i%5 == 0 {
			link.StatusCode = model.NewStatusCode(500)
			link.ErrorType = "Server Error"
			link.Source = "https://example.com/homepage"
		}
		doc.BrokenLinksList = append(doc.BrokenLinksList, link)
	}
	return doc
}

func writeDocument(t *testing.T, path string, doc *model.Document) {
	t.Helper()

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal document: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
}

// testSource writes the test document to a temporary file and returns its path.
func testSource(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "results.json")
	writeDocument(t, path, testDocument())
	return path
}

func testConfig(source string) *config.Config {
	cfg := config.NewConfig()
	cfg.Source = source
	cfg.PageSize = 10
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, opts ...Option) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader, err := adapter.NewLoader(adapter.WithLogger(logger), adapter.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}

	opts = append([]Option{
		WithLogger(logger),
		WithVersion("v0.0.0-test"),
		WithClock(func() time.Time { return testNow }),
	}, opts...)

	s, err := NewServer(cfg, loader, opts...)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return s
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	t.Run("nil config is rejected", func(t *testing.T) {
		t.Parallel()

		loader, err := adapter.NewLoader()
		if err != nil {
			t.Fatalf("failed to create loader: %v", err)
		}
		if _, err := NewServer(nil, loader); err == nil {
			t.Error("expected error for nil config")
		}
	})

	t.Run("nil loader is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := NewServer(config.NewConfig(), nil); err == nil {
			t.Error("expected error for nil loader")
		}
	})

	t.Run("uses the configured address", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(testSource(t))
		cfg.ListenAddr = "127.0.0.1:9999"
		s := newTestServer(t, cfg)
		if s.Addr() != "127.0.0.1:9999" {
			t.Errorf("expected 127.0.0.1:9999, got %s", s.Addr())
		}
	})
}

func TestServer_Summary(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig(testSource(t)))
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var got summaryResponse
	decodeBody(t, rec, &got)
	if got.Degraded {
		t.Error("expected a healthy dataset")
	}
	if got.Summary.BrokenLinks != 25 || got.Summary.TotalURLs != 1000 {
		t.Errorf("expected 25/1000, got %d/%d", got.Summary.BrokenLinks, got.Summary.TotalURLs)
	}
	if got.Health.Grade == "" {
		t.Error("expected a health grade")
	}
	if got.AlertCount != 5 {
		t.Errorf("expected 5 alerts, got %d", got.AlertCount)
	}
}

func TestServer_Links(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig(testSource(t)))

	type page struct {
		Links      []model.BrokenLink `json:"links"`
		Pagination struct {
			Page       int `json:"page"`
			TotalPages int `json:"totalPages"`
			TotalItems int `json:"totalItems"`
		} `json:"pagination"`
	}

	tests := []struct {
		name      string
		target    string
		wantCount int
		wantTotal int
		wantPage  int
		wantFirst string
	}{
		{
			name:      "default order puts server errors first",
			target:    "/api/v1/links",
			wantCount: 10,
			wantTotal: 25,
			wantPage:  1,
			wantFirst: "https://example.com/page-00",
		},
		{
			name:      "page beyond the end is clamped",
			target:    "/api/v1/links?page=99",
			wantCount: 5,
			wantTotal: 25,
			wantPage:  3,
		},
		{
			name:      "locale and status filters combine",
			target:    "/api/v1/links?locale=ja&status=500",
			wantCount: 2,
			wantTotal: 2,
			wantPage:  1,
			wantFirst: "https://example.com/page-05",
		},
		{
			name:      "url sort descending",
			target:    "/api/v1/links?sort=url&dir=desc&pageSize=3",
			wantCount: 3,
			wantTotal: 25,
			wantPage:  1,
			wantFirst: "https://example.com/page-24",
		},
		{
			name:      "search is case-insensitive",
			target:    "/api/v1/links?q=PAGE-07&scope=url",
			wantCount: 1,
			wantTotal: 1,
			wantPage:  1,
			wantFirst: "https://example.com/page-07",
		},
		{
			name:      "no match returns an empty page",
			target:    "/api/v1/links?q=nothing-matches",
			wantCount: 0,
			wantTotal: 0,
			wantPage:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, s.Handler(), http.MethodGet, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var got page
			decodeBody(t, rec, &got)
			if len(got.Links) != tt.wantCount {
				t.Errorf("expected %d links, got %d", tt.wantCount, len(got.Links))
			}
			if got.Pagination.TotalItems != tt.wantTotal {
				t.Errorf("expected %d total, got %d", tt.wantTotal, got.Pagination.TotalItems)
			}
			if got.Pagination.Page != tt.wantPage {
				t.Errorf("expected page %d, got %d", tt.wantPage, got.Pagination.Page)
			}
			if tt.wantFirst != "" && len(got.Links) > 0 && got.Links[0].URL != tt.wantFirst {
				t.Errorf("expected first %s, got %s", tt.wantFirst, got.Links[0].URL)
			}
		})
	}
}

func TestServer_BadQuery(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig(testSource(t)))

	for _, target := range []string{
		"/api/v1/links?sort=nope",
		"/api/v1/links?scope=everywhere",
		"/api/v1/locales?sort=nope",
	} {
		rec := do(t, s.Handler(), http.MethodGet, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", target, rec.Code)
			continue
		}
		var body map[string]string
		decodeBody(t, rec, &body)
		if body["error"] == "" {
			t.Errorf("%s: expected an error message", target)
		}
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig(testSource(t)))

	tests := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/v1/summary"},
		{http.MethodGet, "/api/v1/reload"},
		{http.MethodDelete, "/export.csv"},
	}
	for _, tt := range tests {
		rec := do(t, s.Handler(), tt.method, tt.target)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status 405, got %d", tt.method, tt.target, rec.Code)
		}
	}
}

func TestServer_Locales(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig(testSource(t)))
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/locales?sort=name")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var got struct {
		Sort      string `json:"sort"`
		Direction string `json:"direction"`
		Locales   []struct {
			Name      string `json:"name"`
			Broken    int    `json:"broken"`
			Total     int    `json:"total"`
			Estimated bool   `json:"estimated"`
			Grade     string `json:"grade"`
		} `json:"locales"`
	}
	decodeBody(t, rec, &got)

	if got.Sort != "name" || got.Direction != "asc" {
		t.Errorf("expected name asc, got %s %s", got.Sort, got.Direction)
	}
	if len(got.Locales) != 2 {
		t.Fatalf("expected 2 locales, got %d", len(got.Locales))
	}
	if got.Locales[0].Name != "en" || got.Locales[0].Broken != 13 {
		t.Errorf("expected en with 13 broken, got %s with %d", got.Locales[0].Name, got.Locales[0].Broken)
	}
	if got.Locales[1].Total != 500 || !got.Locales[1].Estimated {
		t.Errorf("expected estimated total 500, got %d (estimated=%v)", got.Locales[1].Total, got.Locales[1].Estimated)
	}
	if got.Locales[0].Grade == "" {
		t.Error("expected a grade")
	}
}

func TestServer_Analytics(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig(testSource(t)))

	t.Run("distribution", func(t *testing.T) {
		t.Parallel()

		rec := do(t, s.Handler(), http.MethodGet, "/api/v1/distribution")
		var got struct {
			Errors        []model.LabelCount `json:"errors"`
			ResponseTimes []model.LabelCount `json:"responseTimes"`
		}
		decodeBody(t, rec, &got)

		counts := make(map[string]int)
		for _, c := range got.Errors {
			counts[c.Label] = c.Count
		}
		if counts["404"] != 20 || counts["500"] != 5 {
			t.Errorf("unexpected distribution: %v", counts)
		}
		if len(got.ResponseTimes) != len(model.BucketLabels()) {
			t.Errorf("expected %d buckets, got %d", len(model.BucketLabels()), len(got.ResponseTimes))
		}
	})

	t.Run("trends", func(t *testing.T) {
		t.Parallel()

		rec := do(t, s.Handler(), http.MethodGet, "/api/v1/trends")
		var got map[string]json.RawMessage
		decodeBody(t, rec, &got)

		var trends model.TrendSeries
		if err := json.Unmarshal(got["trends"], &trends); err != nil {
			t.Fatalf("failed to decode trends: %v", err)
		}
		if len(trends.Points) != 3 || trends.Synthetic {
			t.Errorf("expected 3 real points, got %+v", trends)
		}
		if _, ok := got["synthetic"]; ok {
			t.Error("expected no simulated series by default")
		}
	})

	t.Run("alerts", func(t *testing.T) {
		t.Parallel()

		rec := do(t, s.Handler(), http.MethodGet, "/api/v1/alerts")
		var got struct {
			Alerts []struct {
				Priority string `json:"priority"`
				Impact   string `json:"impact"`
			} `json:"alerts"`
			FailingDomains []struct {
				Domain string `json:"domain"`
				Count  int    `json:"count"`
			} `json:"failingDomains"`
		}
		decodeBody(t, rec, &got)

		if len(got.Alerts) != 5 {
			t.Fatalf("expected 5 alerts, got %d", len(got.Alerts))
		}
		if got.Alerts[0].Priority != "Critical" {
			t.Errorf("expected Critical first, got %s", got.Alerts[0].Priority)
		}
		if len(got.FailingDomains) != 1 || got.FailingDomains[0].Domain != "example.com" || got.FailingDomains[0].Count != 25 {
			t.Errorf("unexpected failing domains: %+v", got.FailingDomains)
		}
	})

	t.Run("report", func(t *testing.T) {
		t.Parallel()

		rec := do(t, s.Handler(), http.MethodGet, "/api/v1/report")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "v0.0.0-test") {
			t.Error("expected the version in the report")
		}
	})
}

func TestServer_Export(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig(testSource(t)))

	tests := []struct {
		name     string
		target   string
		wantRows int
	}{
		{"whole set, not just one page", "/export.csv", 25},
		{"filters apply", "/export.csv?locale=ja", 12},
		{"invalid sort is ignored", "/export.csv?sort=nope&status=500", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, s.Handler(), http.MethodGet, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
				t.Errorf("expected text/csv, got %s", ct)
			}
			want := `attachment; filename="broken-links-2025-02-01.csv"`
			if cd := rec.Header().Get("Content-Disposition"); cd != want {
				t.Errorf("expected %s, got %s", want, cd)
			}

			records, err := csv.NewReader(rec.Body).ReadAll()
			if err != nil {
				t.Fatalf("failed to parse CSV: %v", err)
			}
			if len(records) != tt.wantRows+1 {
				t.Errorf("expected %d rows plus header, got %d", tt.wantRows, len(records)-1)
			}
		})
	}
}

func TestServer_HealthAndReady(t *testing.T) {
	t.Parallel()

	t.Run("health is always ok", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, testConfig(filepath.Join(t.TempDir(), "missing.json")))
		rec := do(t, s.Handler(), http.MethodGet, "/health")
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("ready with a loadable source", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, testConfig(testSource(t)))
		rec := do(t, s.Handler(), http.MethodGet, "/ready")
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("not ready while serving default data", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, testConfig(filepath.Join(t.TempDir(), "missing.json")))
		rec := do(t, s.Handler(), http.MethodGet, "/ready")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", rec.Code)
		}

		var body map[string]string
		decodeBody(t, rec, &body)
		if body["status"] != "degraded" || body["reason"] == "" {
			t.Errorf("unexpected body: %v", body)
		}
	})

	t.Run("summary falls back to the default document", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, testConfig(filepath.Join(t.TempDir(), "missing.json")))
		rec := do(t, s.Handler(), http.MethodGet, "/api/v1/summary")

		var got summaryResponse
		decodeBody(t, rec, &got)
		if !got.Degraded {
			t.Error("expected a degraded dataset")
		}
		if got.Summary.BrokenLinks != 156 || got.Summary.TotalURLs != 10840 {
			t.Errorf("expected default 156/10840, got %d/%d", got.Summary.BrokenLinks, got.Summary.TotalURLs)
		}
	})
}

func TestServer_Reload(t *testing.T) {
	t.Parallel()

	source := testSource(t)
	s := newTestServer(t, testConfig(source))

	brokenLinks := func() int {
		var got summaryResponse
		decodeBody(t, do(t, s.Handler(), http.MethodGet, "/api/v1/summary"), &got)
		return got.Summary.BrokenLinks
	}

	if n := brokenLinks(); n != 25 {
		t.Fatalf("expected 25 broken links, got %d", n)
	}

	doc := testDocument()
	doc.BrokenLinksList = doc.BrokenLinksList[:4]
	four := 4
	doc.BrokenLinks = &four
	writeDocument(t, source, doc)

	if n := brokenLinks(); n != 25 {
		t.Errorf("expected the cached dataset before reload, got %d", n)
	}

	rec := do(t, s.Handler(), http.MethodPost, "/api/v1/reload")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if n := brokenLinks(); n != 4 {
		t.Errorf("expected 4 broken links after reload, got %d", n)
	}
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	t.Run("exposes collectors when enabled", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, testConfig(testSource(t)), WithMetrics(metrics.NewMetrics()))
		_ = do(t, s.Handler(), http.MethodGet, "/api/v1/summary")
		_ = do(t, s.Handler(), http.MethodGet, "/export.csv")

		rec := do(t, s.Handler(), http.MethodGet, "/metrics")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{
			`linkboard_http_requests_total{code="200",route="/api/v1/summary"} 1`,
			`linkboard_exports_total{format="csv"} 1`,
			`linkboard_broken_links 25`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("expected %q in metrics output", want)
			}
		}
	})

	t.Run("no endpoint when disabled", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, testConfig(testSource(t)))
		rec := do(t, s.Handler(), http.MethodGet, "/metrics")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestServer_RequestID(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, testConfig(testSource(t)))

	t.Run("generates an id", func(t *testing.T) {
		t.Parallel()

		rec := do(t, s.Handler(), http.MethodGet, "/health")
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected a request ID header")
		}
	})

	t.Run("echoes the incoming id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("expected abc-123, got %s", got)
		}
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); len(got) > 128 || got == "" {
			t.Errorf("expected a generated ID, got %q", got)
		}
	})

	t.Run("handlers see the id in the context", func(t *testing.T) {
		t.Parallel()

		var seen string
		h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "ctx-id")
		h.ServeHTTP(httptest.NewRecorder(), req)

		if seen != "ctx-id" {
			t.Errorf("expected ctx-id, got %s", seen)
		}
	})
}

func TestServer_BasePath(t *testing.T) {
	t.Parallel()

	cfg := testConfig(testSource(t))
	cfg.BasePath = "/reports"
	s := newTestServer(t, cfg)

	tests := []struct {
		name     string
		target   string
		wantCode int
	}{
		{"api under the prefix", "/reports/api/v1/summary", http.StatusOK},
		{"dashboard under the prefix", "/reports/", http.StatusOK},
		{"prefix without slash redirects", "/reports", http.StatusMovedPermanently},
		{"root is not served", "/api/v1/summary", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, s.Handler(), http.MethodGet, tt.target)
			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestServer_Run(t *testing.T) {
	t.Parallel()

	cfg := testConfig(testSource(t))
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.ShutdownTimeout = time.Second
	s := newTestServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
