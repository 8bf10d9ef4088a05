package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkboard/internal/adapter"
	"github.com/nao1215/linkboard/internal/config"
	"github.com/nao1215/linkboard/internal/metrics"
	"github.com/nao1215/linkboard/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve the broken-link dashboard",
		Long: `Serve starts the web dashboard for a results.json document.

The dashboard shows the run KPIs, the broken-link trend, error and
response-time distributions, critical alerts and a filterable, sortable
and paginated table of broken links. The same data is available as JSON
under /api/v1/ and as CSV under /export.csv.

The document is loaded on first use and cached; POST /api/v1/reload or a
restart picks up a new document.

Examples:
  # Serve ./results.json on 127.0.0.1:8080
  linkboard serve

  # Serve a remote document on all interfaces under /links/
  linkboard serve --listen :8080 --base-path /links https://ci.example.com/results.json

  # Use the run history for the trend chart
  linkboard serve --history results.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr,
		"Listen address in host:port format")
	cmd.Flags().IntP("page-size", "p", config.DefaultPageSize,
		"Number of broken links per table page")
	cmd.Flags().String("base-path", config.DefaultBasePath,
		"URL prefix the dashboard is served under")
	cmd.Flags().Bool("synthetic-trends", false,
		`Draw a simulated trend when there is no trend data (labeled "Simulated")`)
	cmd.Flags().Bool("history", false,
		"Use the run history database for trends when the document has none")
	cmd.Flags().Bool("metrics", true,
		"Expose Prometheus metrics on /metrics")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildServeConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)

	enableMetrics, err := cmd.Flags().GetBool("metrics")
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	loaderOpts := []adapter.LoaderOption{}
	serverOpts := []server.Option{
		server.WithLogger(logger),
		server.WithAnalytics(analyticsOptions(cfg)),
		server.WithVersion(getVersion()),
	}
	if enableMetrics {
		m = metrics.NewMetrics()
		loaderOpts = append(loaderOpts, adapter.WithObserver(m))
		serverOpts = append(serverOpts, server.WithMetrics(m))
	}

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		loaderOpts = append(loaderOpts, adapter.WithTrendProvider(db, cfg.HistoryPoints))
	}

	loader, err := newLoader(cfg, logger, loaderOpts...)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg, loader, serverOpts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting dashboard",
		"listen", cfg.ListenAddr,
		"basePath", cfg.NormalizedBasePath(),
		"source", cfg.Source,
		"history", cfg.History,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s%s\n", cfg.Source, cfg.ListenAddr, cfg.NormalizedBasePath())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop.")

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// buildServeConfig overlays the serve flags that were set explicitly onto
// the loaded configuration, so that unset flags keep configuration file
// values.
func buildServeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		if cfg.ListenAddr, err = flags.GetString("listen"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("page-size") {
		if cfg.PageSize, err = flags.GetInt("page-size"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("base-path") {
		if cfg.BasePath, err = flags.GetString("base-path"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("synthetic-trends") {
		if cfg.SyntheticTrends, err = flags.GetBool("synthetic-trends"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("history") {
		if cfg.History, err = flags.GetBool("history"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
