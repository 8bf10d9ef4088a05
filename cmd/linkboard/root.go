package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkboard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkboard",
		Short: "Dashboard and reports for broken-link checker results",
		Long: `linkboard reads the results.json written by a broken-link checker and
presents it as a web dashboard, filtered tables, CSV exports and reports.

The source can be a file path, a file:// URL or an http(s) URL. When it
cannot be read, linkboard shows built-in sample data and marks it as such.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .linkboard in current directory, XDG config or home directory)")
	cmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewLinksCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
