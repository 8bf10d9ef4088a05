package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkboard/internal/adapter"
	"github.com/nao1215/linkboard/internal/analytics"
	"github.com/nao1215/linkboard/internal/config"
	"github.com/nao1215/linkboard/internal/database"
	linklog "github.com/nao1215/linkboard/internal/log"
	"github.com/nao1215/linkboard/internal/pipeline"
)

// loadConfig builds the configuration from defaults, the configuration
// file and the persistent flags. The first positional argument, when
// present, replaces the configured source.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, usedPath, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.ConfigFilePath = usedPath

	cfg.Verbose, err = cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.JSONLogs, err = cmd.Flags().GetBool("json-logs")
		if err != nil {
			return nil, err
		}
	}

	if len(args) > 0 {
		cfg.Source = args[0]
	}
	return cfg, nil
}

// setupLogger creates the sanitizing logger on stderr and makes it the default.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	logger := linklog.NewLogger(cmd.ErrOrStderr(), linklog.Options{
		Verbose: cfg.Verbose,
		JSON:    cfg.JSONLogs,
	})
	slog.SetDefault(logger)
	return logger
}

// newLoader creates a dataset loader from the configuration.
func newLoader(cfg *config.Config, logger *slog.Logger, opts ...adapter.LoaderOption) (*adapter.Loader, error) {
	base := []adapter.LoaderOption{
		adapter.WithHTTPClient(newHTTPClient(cfg.FetchTimeout)),
		adapter.WithLogger(logger),
		adapter.WithCacheSize(cfg.CacheSize),
		adapter.WithMaxBodySize(cfg.MaxBodySize),
		adapter.WithUserAgent(userAgent(cfg)),
		adapter.WithSyntheticTrends(cfg.SyntheticTrends, uint64(time.Now().UnixNano())), //nolint:gosec // seed only varies the simulated series
	}
	return adapter.NewLoader(append(base, opts...)...)
}

// userAgent returns the configured User-Agent, with the default replaced
// by one that carries the running version.
func userAgent(cfg *config.Config) string {
	if cfg.UserAgent == "" || cfg.UserAgent == config.DefaultUserAgent {
		return "linkboard/" + getVersion() + " (+https://github.com/nao1215/linkboard)"
	}
	return cfg.UserAgent
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// openHistory opens the run history database when history is enabled.
// It returns nil when history is disabled.
func openHistory(cfg *config.Config, logger *slog.Logger) (*database.HistoryDB, error) {
	if !cfg.History {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database opened", "path", db.Path())
	return db, nil
}

// analyticsOptions maps the configuration onto analytics.Options.
func analyticsOptions(cfg *config.Config) analytics.Options {
	return analytics.Options{
		AnomalyThreshold: cfg.AnomalyThreshold,
		TrendDays:        cfg.TrendDays,
		Alerts: analytics.AlertOptions{
			Keywords: cfg.CriticalKeywords,
			Limit:    cfg.AlertLimit,
		},
	}
}

// openOutput returns the file at path, or stdout of cmd when path is empty.
// Parent directories are created as needed. The returned close function
// is always non-nil.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // user-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// addFilterFlags registers the table filter and sort flags shared by the
// links and export commands.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("locale", "", "Show only links of this locale")
	cmd.Flags().String("status", "", `Show only links with this status (e.g. 404, "Timeout", "N/A")`)
	cmd.Flags().String("error-type", "", "Show only links with this error type")
	cmd.Flags().StringP("search", "s", "", "Case-insensitive text search")
	cmd.Flags().Bool("url-only", false, "Search the URL only instead of URL, source and text")
	cmd.Flags().String("sort", "", "Sort column: status, url, locale, errorType, source, text, lastChecked, latency (default: priority)")
	cmd.Flags().Bool("desc", false, "Sort in descending order")
}

// queryFromFlags builds a table query from the flags added by addFilterFlags.
func queryFromFlags(cmd *cobra.Command) (pipeline.Query, error) {
	q := pipeline.NewQuery()
	flags := cmd.Flags()

	var err error
	if q.Locale, err = flags.GetString("locale"); err != nil {
		return q, err
	}
	if q.Status, err = flags.GetString("status"); err != nil {
		return q, err
	}
	if q.ErrorType, err = flags.GetString("error-type"); err != nil {
		return q, err
	}
	if q.Search, err = flags.GetString("search"); err != nil {
		return q, err
	}

	urlOnly, err := flags.GetBool("url-only")
	if err != nil {
		return q, err
	}
	if urlOnly {
		q.Scope = pipeline.ScopeURL
	}

	sortName, err := flags.GetString("sort")
	if err != nil {
		return q, err
	}
	if q.Sort, err = pipeline.ParseSortColumn(sortName); err != nil {
		return q, err
	}

	desc, err := flags.GetBool("desc")
	if err != nil {
		return q, err
	}
	if desc {
		q.Direction = pipeline.Descending
	}
	return q, nil
}
