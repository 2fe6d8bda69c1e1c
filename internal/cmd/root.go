package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for ffind
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ffind",
		Short: "Concurrent pattern-based file finder",
		Long: `ffind scans a directory tree with a pool of workers and reports
files whose names match a glob pattern ('*' and '?' wildcards,
case-insensitive).

Workers share a queue of directories and cooperatively discover
traversal work, so large trees are scanned in parallel without a
central coordinator.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewWatchCommand())
	cmd.AddCommand(NewInitCommand())

	return cmd
}
