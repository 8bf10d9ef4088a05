package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkboard/internal/config"
	"github.com/nao1215/linkboard/internal/model"
	"github.com/nao1215/linkboard/internal/pipeline"
	"github.com/nao1215/linkboard/internal/report"
)

// NewLinksCmd creates the links command.
func NewLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links [source]",
		Short: "Print one page of the broken-link table",
		Long: `Links prints the broken links of a results.json document as a table.

Without a sort column the table is in priority order: server errors (500)
first, then 4xx, then unreachable (999), then network errors, then the
rest, each group ordered by URL.

Examples:
  # First page in priority order
  linkboard links

  # Japanese 404s sorted by latency, slowest first
  linkboard links --locale ja --status 404 --sort latency --desc

  # Search URLs only, third page as JSON
  linkboard links --search /docs/ --url-only --page 3 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLinksCmd,
	}

	addFilterFlags(cmd)
	cmd.Flags().Int("page", 1, "Page number (clamped to the last page)")
	cmd.Flags().IntP("page-size", "n", config.DefaultPageSize, "Number of links per page")
	cmd.Flags().BoolP("json", "j", false, "Output the page as JSON")

	return cmd
}

// runLinksCmd executes the links command.
func runLinksCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}
	if q.Page, err = cmd.Flags().GetInt("page"); err != nil {
		return err
	}
	q.PageSize = cfg.PageSize
	if cmd.Flags().Changed("page-size") {
		if q.PageSize, err = cmd.Flags().GetInt("page-size"); err != nil {
			return err
		}
	}
	cfg.PageSize = q.PageSize
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg)
	ds, err := loadDataset(cmd, cfg, logger)
	if err != nil {
		return err
	}

	view, err := pipeline.Apply(cmd.Context(), ds.Links, q, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	if jsonOutput {
		_, err = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint()).WriteLinks(view)
		return err
	}
	_, err = report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(cfg.Verbose)).WriteLinks(view)
	return err
}

// loadDataset loads the configured source. When the default document had
// to be used instead, a warning is printed to stderr.
func loadDataset(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*model.Dataset, error) {
	loader, err := newLoader(cfg, logger)
	if err != nil {
		return nil, err
	}

	ds := loader.Load(cmd.Context(), cfg.Source)
	if ds.Degraded {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s (%s); showing sample data\n", ds.DegradedReason, cfg.Source)
	}
	return ds, nil
}
