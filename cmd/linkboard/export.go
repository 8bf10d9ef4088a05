package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkboard/internal/pipeline"
	"github.com/nao1215/linkboard/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [source]",
		Short: "Export the filtered broken links as CSV",
		Long: `Export writes every broken link matching the filters as CSV, in table
order. Pagination does not apply: the whole filtered set is exported.

Columns: Status Code, URL, Locale, Error Type, Source, Last Checked,
Latency (ms).

Examples:
  # Export everything to stdout
  linkboard export

  # Export server errors to a dated file
  linkboard export --status 500 -o broken-links-2025-01-15.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExportCmd,
	}

	addFilterFlags(cmd)
	cmd.Flags().StringP("output", "o", "",
		"Write CSV to the specified file path (creates directories if needed)")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
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

	out, closeOut, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	if _, err := report.NewCSVWriter(out).WriteLinks(view.Links); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if err := closeOut(); err != nil {
		return err
	}

	if outputPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d broken links to %s\n", len(view.Links), outputPath)
	}
	return nil
}
