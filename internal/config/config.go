package config

import (
	"net"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultSource is the Result Document read when no source is given.
	DefaultSource = "results.json"

	// DefaultListenAddr is the dashboard listen address. The loopback
	// interface keeps the dashboard private unless configured otherwise.
	DefaultListenAddr = "127.0.0.1:8080"

	// DefaultBasePath is the URL prefix the dashboard is mounted under.
	DefaultBasePath = "/"

	// DefaultPageSize is the number of broken links shown per page.
	DefaultPageSize = 20

	// DefaultCacheSize is the number of loaded datasets kept in memory.
	DefaultCacheSize = 16

	// DefaultFetchTimeout bounds one fetch of the Result Document.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxBodySize limits how much of the Result Document is read.
	DefaultMaxBodySize = 32 * 1024 * 1024 // 32MB

	// DefaultHistoryPoints is the number of history runs used as trend points.
	DefaultHistoryPoints = 90

	// DefaultAnomalyThreshold is the deviation from the mean, in percent,
	// above which a trend point is reported as an anomaly.
	DefaultAnomalyThreshold = 10.0

	// DefaultTrendDays is the number of trend points summarized.
	DefaultTrendDays = 30

	// DefaultAlertLimit caps the critical alerts list.
	DefaultAlertLimit = 10

	// DefaultReadTimeout and DefaultWriteTimeout bound dashboard requests.
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 30 * time.Second

	// DefaultShutdownTimeout is how long in-flight requests may finish on shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultUserAgent identifies linkboard when fetching a remote document.
	DefaultUserAgent = "linkboard (+https://github.com/nao1215/linkboard)"

	// AppName is the application name used for XDG directory paths.
	AppName = "linkboard"
)

// DefaultCriticalKeywords returns the source keywords that mark a broken
// link as a critical alert.
func DefaultCriticalKeywords() []string {
	return []string{"homepage", "pricing", "signup", "login"}
}

// Config holds all configuration options for linkboard.
// It is populated from defaults, the config file and CLI flags, and passed
// through the application rather than kept in global state.
type Config struct {
	// Source is the Result Document path, file:// URL or http(s) URL.
	Source string

	// ListenAddr is the dashboard listen address in "host:port" format.
	ListenAddr string

	// BasePath is the URL prefix the dashboard is served under, such as
	// "/reports/". It always starts with "/".
	BasePath string

	// PageSize is the number of broken links per page.
	PageSize int

	// CacheSize is the number of loaded datasets kept in memory.
	CacheSize int

	// FetchTimeout bounds one fetch of a remote Result Document.
	FetchTimeout time.Duration

	// MaxBodySize is the maximum Result Document size in bytes.
	// Set to 0 to use the default (32MB).
	MaxBodySize int64

	// UserAgent is the User-Agent header sent when fetching remote documents.
	UserAgent string

	// History backs trend series with the run history database when the
	// document carries no trends.
	History bool

	// HistoryPoints caps the number of history runs used as trend points.
	HistoryPoints int

	// DBDir is the directory of the run history database.
	// Defaults to the XDG data directory (~/.local/share/linkboard on Linux).
	DBDir string

	// SyntheticTrends enables the simulated trend series. It is labeled
	// "Simulated" wherever it is shown and never mixed with real data.
	SyntheticTrends bool

	// AnomalyThreshold is the anomaly deviation threshold in percent.
	AnomalyThreshold float64

	// TrendDays is the number of trend points summarized.
	TrendDays int

	// CriticalKeywords are source substrings that mark critical pages.
	CriticalKeywords []string

	// AlertLimit caps the critical alerts list. A negative value disables the cap.
	AlertLimit int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONLogs switches the log output from text to JSON.
	JSONLogs bool

	// ReadTimeout and WriteTimeout bound dashboard HTTP requests.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ShutdownTimeout is how long the dashboard waits for in-flight requests.
	ShutdownTimeout time.Duration

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path. When empty, output goes to stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Source:           DefaultSource,
		ListenAddr:       DefaultListenAddr,
		BasePath:         DefaultBasePath,
		PageSize:         DefaultPageSize,
		CacheSize:        DefaultCacheSize,
		FetchTimeout:     DefaultFetchTimeout,
		MaxBodySize:      DefaultMaxBodySize,
		UserAgent:        DefaultUserAgent,
		HistoryPoints:    DefaultHistoryPoints,
		DBDir:            XDGDataDir(),
		AnomalyThreshold: DefaultAnomalyThreshold,
		TrendDays:        DefaultTrendDays,
		CriticalKeywords: DefaultCriticalKeywords(),
		AlertLimit:       DefaultAlertLimit,
		ReadTimeout:      DefaultReadTimeout,
		WriteTimeout:     DefaultWriteTimeout,
		ShutdownTimeout:  DefaultShutdownTimeout,
	}
}

// XDGDataDir returns the XDG data directory for linkboard.
// On Linux: ~/.local/share/linkboard
// On macOS: ~/Library/Application Support/linkboard
// On Windows: %LOCALAPPDATA%\linkboard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linkboard.
// On Linux: ~/.config/linkboard
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for linkboard.
// On Linux: ~/.cache/linkboard
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if c.Source == "" {
		return ErrNoSource
	}

	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.PageSize <= 0 {
		return ErrInvalidPageSize
	}

	if c.CacheSize <= 0 {
		return ErrInvalidCacheSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.AnomalyThreshold <= 0 {
		return ErrInvalidAnomalyThreshold
	}

	if c.BasePath == "" || c.BasePath[0] != '/' {
		return ErrInvalidBasePath
	}

	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return ErrInvalidListenAddress
	}

	return nil
}

// NormalizedBasePath returns BasePath with exactly one trailing slash.
func (c *Config) NormalizedBasePath() string {
	p := c.BasePath
	if p == "" {
		return "/"
	}
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	if p == "/" {
		return p
	}
	return p + "/"
}
