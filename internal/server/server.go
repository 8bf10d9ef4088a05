package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/linkboard/internal/analytics"
	"github.com/nao1215/linkboard/internal/config"
	"github.com/nao1215/linkboard/internal/metrics"
	"github.com/nao1215/linkboard/internal/model"
)

// DatasetLoader loads and caches datasets. *adapter.Loader implements it.
type DatasetLoader interface {
	Load(ctx context.Context, source string) *model.Dataset
	Invalidate(source string)
}

// Server wraps an HTTP server and its route handlers.
type Server struct {
	httpServer *http.Server
	handler    http.Handler

	cfg       *config.Config
	loader    DatasetLoader
	metrics   *metrics.Metrics
	logger    *slog.Logger
	analytics analytics.Options
	version   string
	now       func() time.Time
	dashboard *dashboardRenderer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request and error logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics enables the Prometheus collectors and the /metrics endpoint.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithAnalytics sets the analytics options used for health, alerts and trends.
func WithAnalytics(opts analytics.Options) Option {
	return func(s *Server) {
		s.analytics = opts
	}
}

// WithVersion sets the version shown in the dashboard footer.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer creates a configured HTTP server.
func NewServer(cfg *config.Config, loader DatasetLoader, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if loader == nil {
		return nil, errors.New("loader is nil")
	}

	s := &Server{
		cfg:    cfg,
		loader: loader,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	renderer, err := newDashboardRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}
	s.dashboard = renderer

	mux := http.NewServeMux()
	s.handle(mux, "GET /{$}", s.dashboardHandler)
	s.handle(mux, "GET /favicon.ico", faviconHandler)
	s.handle(mux, "GET /api/v1/summary", s.summaryHandler)
	s.handle(mux, "GET /api/v1/report", s.reportHandler)
	s.handle(mux, "GET /api/v1/links", s.linksHandler)
	s.handle(mux, "GET /api/v1/locales", s.localesHandler)
	s.handle(mux, "GET /api/v1/distribution", s.distributionHandler)
	s.handle(mux, "GET /api/v1/trends", s.trendsHandler)
	s.handle(mux, "GET /api/v1/alerts", s.alertsHandler)
	s.handle(mux, "POST /api/v1/reload", s.reloadHandler)
	s.handle(mux, "GET /export.csv", s.exportHandler)
	s.handle(mux, "GET /health", healthHandler)
	s.handle(mux, "GET /ready", s.readyHandler)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var root http.Handler = mux
	if base := cfg.NormalizedBasePath(); base != "/" {
		prefixed := http.NewServeMux()
		prefixed.Handle(base, http.StripPrefix(strings.TrimSuffix(base, "/"), mux))
		prefixed.Handle(strings.TrimSuffix(base, "/"), http.RedirectHandler(base, http.StatusMovedPermanently))
		root = prefixed
	}

	s.handler = RequestID(Logging(s.logger)(root))
	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return s, nil
}

// handle registers h under pattern and records request metrics for it.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	route := pattern
	if _, path, ok := strings.Cut(pattern, " "); ok {
		route = path
	}
	mux.Handle(pattern, instrument(s.metrics, route, h))
}

// Handler returns the root handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Run serves until ctx is cancelled, then shuts down within the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// dataset loads the configured source and updates the broken-links gauge.
func (s *Server) dataset(r *http.Request) *model.Dataset {
	ds := s.loader.Load(r.Context(), s.cfg.Source)
	s.metrics.SetBrokenLinks(ds.Summary.BrokenLinks)
	return ds
}
