package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/harrison/ffind/internal/finder"
	"github.com/harrison/ffind/internal/watcher"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <root> <pattern>",
		Short: "Report matching files as they appear in a directory tree",
		Long: `Sweep the tree once, print every file whose name matches the pattern,
then keep watching: newly created matching files are printed as they
appear, and newly created directories are watched too.

Runs until interrupted (Ctrl-C).

Examples:
  ffind watch /var/log '*.gz'
  ffind watch ~/downloads 'invoice_??.pdf' --log-level debug`,
		Args: cobra.ExactArgs(2),
		RunE: watchCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .ffind/config.yaml)")
	cmd.Flags().Bool("substring", false, "Treat a wildcard-free pattern as a substring match")
	cmd.Flags().String("log-level", "", "Log verbosity: debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for scan log files (empty = console only)")

	return cmd
}

// watchCommand implements the watch command logic
func watchCommand(cmd *cobra.Command, args []string) error {
	root, pattern := args[0], args[1]

	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}

	log, fileLog, err := buildLogger(cmd, cfg)
	if err != nil {
		return err
	}
	if fileLog != nil {
		defer fileLog.Close()
	}

	substring := cfg.Substring
	if cmd.Flags().Changed("substring") {
		substring, _ = cmd.Flags().GetBool("substring")
	}

	w, err := watcher.New(watcher.Options{
		Root:      root,
		Pattern:   pattern,
		Substring: substring,
		Sink:      finder.NewWriterSink(cmd.OutOrStdout()),
		Logger:    log,
	})
	if err != nil {
		return err
	}

	log.Infof("watching %s for %q (Ctrl-C to stop)", root, pattern)

	err = w.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		// Interrupt is the normal way out of watch mode.
		return nil
	}
	return err
}
