package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkboard/internal/adapter"
	"github.com/nao1215/linkboard/internal/analytics"
	"github.com/nao1215/linkboard/internal/config"
	"github.com/nao1215/linkboard/internal/database"
	"github.com/nao1215/linkboard/internal/model"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [previous] [current]",
		Short: "Compare two checker runs",
		Long: `Compare shows which broken links are new and which were resolved between
two runs, and how the totals changed. Links are matched by URL and locale.

With no arguments the latest two recorded runs are compared. With one
argument the latest recorded run is compared with that document. With two
arguments both documents are read directly and the history is not used.

Examples:
  # Compare the latest two recorded runs
  linkboard compare

  # Compare the latest recorded run with run 3
  linkboard compare --with-run-id 3

  # Compare two documents as Markdown
  linkboard compare --markdown old/results.json results.json`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare the latest recorded run with this run ID")
	cmd.Flags().String("db-dir", "",
		"Run history database directory (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON comparison (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown comparison (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write comparison to specified file path")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db-dir") {
		if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
			return err
		}
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
	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}

	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	if withRunID != 0 && len(args) > 0 {
		return errors.New("--with-run-id cannot be combined with document arguments")
	}

	logger := setupLogger(cmd, cfg)
	loader, err := newLoader(cfg, logger)
	if err != nil {
		return err
	}

	var comparison *analytics.Comparison
	if len(args) == 2 {
		comparison, err = compareDocuments(cmd.Context(), loader, args[0], args[1])
	} else {
		var db *database.HistoryDB
		db, err = openHistoryDB(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		comparison, err = compareRecorded(cmd.Context(), db, loader, args, withRunID)
	}
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, cfg.ReportFile)
	if err != nil {
		return err
	}
	if _, err := newOutputWriter(cmd, out, cfg, false).WriteComparison(comparison); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write comparison: %w", err)
	}
	return closeOut()
}

// compareDocuments reads both documents concurrently and compares them.
func compareDocuments(ctx context.Context, loader *adapter.Loader, previous, current string) (*analytics.Comparison, error) {
	fetched, err := loader.LoadAll(ctx, []string{previous, current})
	if err != nil {
		return nil, err
	}
	datasets := make([]*model.Dataset, len(fetched))
	for i, f := range fetched {
		if f.Err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Source, f.Err)
		}
		datasets[i] = adapter.Normalize(f.Document, adapter.NormalizeOptions{Source: f.Source})
	}
	return analytics.Compare(datasets[0], datasets[1]), nil
}

// compareRecorded compares against the run history. The latest recorded run
// is the previous run when a current document is given, and the current
// run otherwise.
func compareRecorded(ctx context.Context, db *database.HistoryDB, loader *adapter.Loader, args []string, withRunID int64) (*analytics.Comparison, error) {
	runs, err := db.LatestRuns(ctx, 2)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.New("no runs recorded (use 'linkboard history import' first)")
	}

	latest, latestDS, err := recordedDataset(ctx, db, runs[0].ID)
	if err != nil {
		return nil, err
	}

	switch {
	case len(args) == 1:
		fetched, err := loader.LoadAll(ctx, args)
		if err != nil {
			return nil, err
		}
		if fetched[0].Err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", args[0], fetched[0].Err)
		}
		current := adapter.Normalize(fetched[0].Document, adapter.NormalizeOptions{Source: args[0]})
		c := analytics.Compare(latestDS, current)
		withRun(&c.Previous, latest)
		return c, nil

	case withRunID != 0:
		previous, previousDS, err := recordedDataset(ctx, db, withRunID)
		if err != nil {
			return nil, err
		}
		c := analytics.Compare(previousDS, latestDS)
		withRun(&c.Previous, previous)
		withRun(&c.Current, latest)
		return c, nil

	default:
		if len(runs) < 2 {
			return nil, fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
		}
		previous, previousDS, err := recordedDataset(ctx, db, runs[1].ID)
		if err != nil {
			return nil, err
		}
		c := analytics.Compare(previousDS, latestDS)
		withRun(&c.Previous, previous)
		withRun(&c.Current, latest)
		return c, nil
	}
}

// recordedDataset rebuilds the dataset of a recorded run from its document.
func recordedDataset(ctx context.Context, db *database.HistoryDB, id int64) (*database.Run, *model.Dataset, error) {
	run, err := db.GetRunByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	doc, err := adapter.Decode(run.Source, run.Document)
	if err != nil {
		return nil, nil, fmt.Errorf("run %d: %w", id, err)
	}
	ds := adapter.Normalize(doc, adapter.NormalizeOptions{
		Source: run.Source,
		Now:    run.RecordedAt,
	})
	return run, ds, nil
}

func withRun(m *analytics.RunMetadata, run *database.Run) {
	m.ID = run.ID
	m.RecordedAt = run.RecordedAt
}
