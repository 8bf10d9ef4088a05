package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkboard/internal/config"
	"github.com/nao1215/linkboard/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [source]",
		Short: "Summarize a results document",
		Long: `Report prints the run summary of a results.json document: KPIs, health
score and grade, error and response-time distributions, locales, critical
alerts, the most failing domains and the trend.

Examples:
  # Human-readable summary
  linkboard report

  # Markdown summary for a pull request comment
  linkboard report --markdown -o report.md

  # JSON summary of a remote document
  linkboard report --json https://ci.example.com/results.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReportCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("empty-sections", false,
		"Show sections that have no data in the text report")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	showEmpty, err := cmd.Flags().GetBool("empty-sections")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg)
	ds, err := loadDataset(cmd, cfg, logger)
	if err != nil {
		return err
	}

	summary := report.NewSummary(ds, analyticsOptions(cfg), getVersion(), time.Now())

	out, closeOut, err := openOutput(cmd, cfg.ReportFile)
	if err != nil {
		return err
	}
	if _, err := newOutputWriter(cmd, out, cfg, showEmpty).Write(summary); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return closeOut()
}

// newOutputWriter returns the writer for the report destination. When the
// report goes to a file, the text summary is also printed to stdout.
func newOutputWriter(cmd *cobra.Command, out io.Writer, cfg *config.Config, showEmpty bool) report.Writer {
	w := newReportWriter(out, cfg, showEmpty)
	if cfg.ReportFile == "" {
		return w
	}
	return report.NewMultiWriter(
		report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(cfg.Verbose)),
		w,
	)
}

// newReportWriter selects the writer for the configured report format.
func newReportWriter(out io.Writer, cfg *config.Config, showEmpty bool) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out,
			report.WithVerbose(cfg.Verbose),
			report.WithShowEmpty(showEmpty),
		)
	}
}
