package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkboard/internal/adapter"
	"github.com/nao1215/linkboard/internal/config"
	"github.com/nao1215/linkboard/internal/database"
	"github.com/nao1215/linkboard/internal/report"
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the run history database",
		Long: `History records checker runs in a local SQLite database. Recorded runs
back the trend chart when a document carries no trends ("serve --history")
and can be compared with "linkboard compare".

Identical documents are recorded once.`,
	}

	cmd.PersistentFlags().String("db-dir", "",
		"Run history database directory (default: XDG data directory)")

	cmd.AddCommand(newHistoryImportCmd())
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	return cmd
}

func newHistoryImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [source...]",
		Short: "Record one or more results documents",
		Long: `Import fetches the given results documents concurrently and records each
of them as a run. Without arguments the configured source is imported.

Examples:
  # Record the current results
  linkboard history import results.json

  # Backfill archived runs
  linkboard history import archive/*.json`,
		RunE: runHistoryImportCmd,
	}
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryListCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryDeleteCmd,
	}
}

// historyConfig loads the configuration and applies --db-dir.
func historyConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("db-dir") {
		if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openHistoryDB opens the history database regardless of cfg.History.
func openHistoryDB(cfg *config.Config, logger *slog.Logger) (*database.HistoryDB, error) {
	enabled := *cfg
	enabled.History = true
	return openHistory(&enabled, logger)
}

func runHistoryImportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := historyConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	sources := args
	if len(sources) == 0 {
		sources = []string{cfg.Source}
	}

	loader, err := newLoader(cfg, logger)
	if err != nil {
		return err
	}
	fetched, err := loader.LoadAll(cmd.Context(), sources)
	if err != nil {
		return err
	}

	db, err := openHistoryDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	var failed int
	for _, f := range fetched {
		if f.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to read %s: %v\n", f.Source, f.Err)
			continue
		}

		ds := adapter.Normalize(f.Document, adapter.NormalizeOptions{
			Source: f.Source,
			Now:    time.Now(),
		})
		id, inserted, err := db.SaveRun(cmd.Context(), ds, f.Raw)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to record %s: %v\n", f.Source, err)
			continue
		}
		if inserted {
			fmt.Fprintf(out, "Recorded run %d from %s (%d broken links)\n", id, f.Source, ds.Summary.BrokenLinks)
		} else {
			fmt.Fprintf(out, "Skipped %s: already recorded as run %d\n", f.Source, id)
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to import %d of %d documents", failed, len(fetched))
	}
	return nil
}

func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := historyConfig(cmd)
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	db, err := openHistoryDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if runs == nil {
			runs = []database.Run{}
		}
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(runs)
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		fmt.Fprintln(out, "\nUse 'linkboard history import <source>' to record a run.")
		return nil
	}

	fmt.Fprintf(out, "Recorded runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-24s  %8s  %8s  %8s\n", "ID", "Recorded", "Last Updated", "Broken", "Total", "Success")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 84))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-24s  %8d  %8d  %7.1f%%\n",
			r.ID,
			r.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			r.LastUpdated,
			r.BrokenLinks,
			r.TotalURLs,
			r.SuccessRate,
		)
	}
	fmt.Fprintln(out, "\nUse 'linkboard compare' to compare the latest two runs.")
	return nil
}

func runHistoryDeleteCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid run ID: %s", args[0])
	}

	cfg, err := historyConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	db, err := openHistoryDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteRun(cmd.Context(), id); err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			return fmt.Errorf("run %d does not exist", id)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %d\n", id)
	return nil
}
