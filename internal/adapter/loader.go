package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/nao1215/linkboard/internal/model"
)

// Load outcomes reported to the LoadObserver.
const (
	OutcomeLoaded   = "loaded"
	OutcomeCacheHit = "cache_hit"
	OutcomeFallback = "fallback"
)

// Loader defaults.
const (
	DefaultCacheSize   = 16
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 32 * 1024 * 1024 // 32MB
	DefaultConcurrency = 4
	DefaultUserAgent   = "linkboard"
)

// LoadObserver receives one call per Load with its outcome.
type LoadObserver interface {
	IncLoad(outcome string)
}

// TrendProvider supplies real trend points, oldest first.
type TrendProvider interface {
	TrendPoints(ctx context.Context, limit int) ([]model.TrendPoint, error)
}

// Loader fetches, normalizes and caches Result Documents. It is safe for
// concurrent use; the first caller for a source populates the cache and
// concurrent callers wait for that result.
type Loader struct {
	client      *http.Client
	cache       *lru.Cache[string, *model.Dataset]
	group       singleflight.Group
	logger      *slog.Logger
	observer    LoadObserver
	history     TrendProvider
	historySize int
	synthetic   bool
	seed        uint64
	userAgent   string
	maxBodySize int64
	concurrency int
	cacheSize   int
	now         func() time.Time
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithObserver registers a LoadObserver, typically the metrics registry.
func WithObserver(o LoadObserver) LoaderOption {
	return func(l *Loader) {
		l.observer = o
	}
}

// WithTrendProvider makes the loader back trend series with the run
// history when a document has no trends. limit caps the number of points.
func WithTrendProvider(p TrendProvider, limit int) LoaderOption {
	return func(l *Loader) {
		l.history = p
		l.historySize = limit
	}
}

// WithSyntheticTrends enables the simulated trend series with a seed.
func WithSyntheticTrends(enabled bool, seed uint64) LoaderOption {
	return func(l *Loader) {
		l.synthetic = enabled
		l.seed = seed
	}
}

// WithCacheSize sets the number of datasets kept in memory.
func WithCacheSize(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.cacheSize = n
		}
	}
}

// WithMaxBodySize limits how many bytes of a document are read.
func WithMaxBodySize(n int64) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxBodySize = n
		}
	}
}

// WithConcurrency sets how many documents LoadAll fetches at once.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithUserAgent sets the User-Agent header for http(s) sources.
func WithUserAgent(ua string) LoaderOption {
	return func(l *Loader) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		l.now = now
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{
		client:      &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		concurrency: DefaultConcurrency,
		cacheSize:   DefaultCacheSize,
		historySize: 90,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.logger == nil {
		l.logger = slog.Default()
	}

	cache, err := lru.New[string, *model.Dataset](l.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset cache: %w", err)
	}
	l.cache = cache

	return l, nil
}

// Load returns the normalized dataset for source. A cached dataset is
// returned when present. When the document cannot be fetched or parsed,
// the default document is used and the dataset is marked Degraded; such
// datasets are not cached, so the next call tries the source again.
func (l *Loader) Load(ctx context.Context, source string) *model.Dataset {
	if ds, ok := l.cache.Get(source); ok {
		l.observe(OutcomeCacheHit)
		return ds
	}

	// The shared fetch outlives a caller that gives up; the HTTP client
	// timeout still bounds it.
	ctx = context.WithoutCancel(ctx)
	v, _, _ := l.group.Do(source, func() (any, error) { //nolint:errcheck // the loader never fails
		if ds, ok := l.cache.Get(source); ok {
			l.observe(OutcomeCacheHit)
			return ds, nil
		}

		doc, err := l.Fetch(ctx, source)
		if err != nil {
			l.logger.Warn("result document unavailable, using default data",
				"source", source,
				"kind", string(fetchErrorKind(err)),
				"error", err,
			)
			l.observe(OutcomeFallback)
			return l.fallback(source, err), nil
		}

		ds := l.normalize(ctx, source, doc)
		l.cache.Add(source, ds)
		l.observe(OutcomeLoaded)

		l.logger.Debug("result document loaded",
			"source", source,
			"records", len(ds.Links),
			"broken", ds.Summary.BrokenLinks,
		)
		return ds, nil
	})

	return v.(*model.Dataset) //nolint:forcetypeassert // singleflight returns what the closure returned
}

// Invalidate drops the cached dataset for source.
func (l *Loader) Invalidate(source string) {
	l.cache.Remove(source)
}

// Purge drops every cached dataset.
func (l *Loader) Purge() {
	l.cache.Purge()
}

// Cached reports whether a dataset for source is in the cache.
func (l *Loader) Cached(source string) bool {
	return l.cache.Contains(source)
}

// Fetch reads and decodes the Result Document at source without
// normalizing or caching it.
func (l *Loader) Fetch(ctx context.Context, source string) (*model.Document, error) {
	raw, err := l.FetchRaw(ctx, source)
	if err != nil {
		return nil, err
	}
	return Decode(source, raw)
}

// FetchRaw reads the bytes of the document at source. Sources are
// http(s) URLs, file:// URLs or filesystem paths.
func (l *Loader) FetchRaw(ctx context.Context, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptySource
	}

	u, err := url.Parse(source)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return l.fetchHTTP(ctx, source)
		case "file":
			return l.readFile(source, u.Path)
		}
	}
	return l.readFile(source, source)
}

func (l *Loader) fetchHTTP(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrorNetwork, Source: source, Err: err}
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrorNetwork, Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Kind:   FetchErrorStatus,
			Source: source,
			Err:    fmt.Errorf("unexpected HTTP status %d", resp.StatusCode),
		}
	}

	return l.readLimited(source, resp.Body)
}

func (l *Loader) readFile(source, path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided document path is intentional
	if err != nil {
		return nil, &FetchError{Kind: FetchErrorNetwork, Source: source, Err: err}
	}
	defer f.Close()

	return l.readLimited(source, f)
}

// readLimited reads r up to the maximum document size. A document with
// more bytes than that is rejected rather than truncated.
func (l *Loader) readLimited(source string, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBodySize+1))
	if err != nil {
		return nil, &FetchError{Kind: FetchErrorNetwork, Source: source, Err: err}
	}
	if int64(len(data)) > l.maxBodySize {
		return nil, &FetchError{
			Kind:   FetchErrorTooLarge,
			Source: source,
			Err:    fmt.Errorf("document exceeds %d bytes", l.maxBodySize),
		}
	}
	return data, nil
}

// Decode parses a Result Document.
func Decode(source string, data []byte) (*model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &FetchError{Kind: FetchErrorDecode, Source: source, Err: err}
	}
	return &doc, nil
}

// Fetched is one document read by LoadAll.
type Fetched struct {
	Source   string
	Raw      []byte
	Document *model.Document
	Err      error
}

// LoadAll fetches several documents concurrently, at most the configured
// concurrency at a time. Results keep the order of sources; per-document
// failures are reported in Fetched.Err. The returned error is non-nil only
// when ctx is cancelled.
func (l *Loader) LoadAll(ctx context.Context, sources []string) ([]Fetched, error) {
	results := make([]Fetched, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			results[i].Source = source
			raw, err := l.FetchRaw(ctx, source)
			if err == nil {
				results[i].Raw = raw
				results[i].Document, err = Decode(source, raw)
			}
			if err != nil {
				l.logger.Warn("failed to load result document", "source", source, "error", err)
				results[i].Err = err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (l *Loader) normalize(ctx context.Context, source string, doc *model.Document) *model.Dataset {
	if b, ok := model.IntValue(doc.BrokenLinks); ok {
		if t, ok := model.IntValue(doc.TotalURLs); ok && t < b {
			l.logger.Warn("document reports more broken links than URLs",
				"source", source, "totalUrls", t, "brokenLinks", b)
		}
	}

	opts := NormalizeOptions{
		Source:          source,
		Now:             l.now(),
		SyntheticTrends: l.synthetic,
		Seed:            l.seed,
	}

	if l.history != nil && len(doc.Trends) == 0 {
		points, err := l.history.TrendPoints(ctx, l.historySize)
		if err != nil {
			l.logger.Warn("failed to read run history", "error", err)
		} else {
			opts.History = points
		}
	}

	return Normalize(doc, opts)
}

func (l *Loader) fallback(source string, cause error) *model.Dataset {
	ds := Normalize(DefaultDocument(l.now()), NormalizeOptions{
		Source:          source,
		Now:             l.now(),
		SyntheticTrends: l.synthetic,
		Seed:            l.seed,
	})
	ds.Degraded = true
	ds.DegradedReason = degradedReason(cause)
	return ds
}

func degradedReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptySource):
		return "no result document configured"
	case fetchErrorKind(err) == FetchErrorDecode:
		return "result document is not valid JSON"
	case fetchErrorKind(err) == FetchErrorStatus:
		return "result document request failed"
	case fetchErrorKind(err) == FetchErrorTooLarge:
		return "result document is too large"
	default:
		return "result document could not be read"
	}
}

func (l *Loader) observe(outcome string) {
	if l.observer != nil {
		l.observer.IncLoad(outcome)
	}
}
