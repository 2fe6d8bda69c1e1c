package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/ffind/internal/config"
	"github.com/harrison/ffind/internal/finder"
	"github.com/harrison/ffind/internal/history"
	"github.com/harrison/ffind/internal/logger"
)

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <root> <pattern>",
		Short: "Scan a directory tree for files matching a pattern",
		Long: `Scan a directory tree concurrently and print the path of every file
whose name matches the pattern.

Patterns support '*' (any run of characters) and '?' (single character)
and are matched case-insensitively against the whole filename. With
--substring, a pattern without wildcards matches anywhere in the name
instead.

Configuration is loaded from .ffind/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  # All .txt files under the current directory
  ffind search . '*.txt'

  # Two-digit data files, 8 workers
  ffind search /data 'data_??.csv' --workers 8

  # Substring match: any filename containing "report"
  ffind search ~/docs report --substring

  # Skip dependency directories, two levels deep at most
  ffind search . '*.go' --exclude-dir .git --exclude-dir node_modules --max-depth 2

  # Persist the run to the history database
  ffind search /var/log '*.gz' --save

  # Verbose diagnostics plus a scan log on disk
  ffind search / '*.conf' --log-level debug --log-dir ./logs`,
		Args: cobra.ExactArgs(2),
		RunE: searchCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .ffind/config.yaml)")
	cmd.Flags().IntP("workers", "w", -1, "Number of scan workers (0 = host parallelism, -1 = use config)")
	cmd.Flags().Bool("substring", false, "Treat a wildcard-free pattern as a substring match")
	cmd.Flags().StringSlice("exclude-dir", nil, "Directory names to skip (repeatable)")
	cmd.Flags().Int("max-depth", -1, "Maximum recursion depth (0 = unlimited, -1 = use config)")
	cmd.Flags().String("log-level", "", "Log verbosity: debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for scan log files (empty = console only)")
	cmd.Flags().Bool("save", false, "Record the run in the history database")
	cmd.Flags().String("history-db", "", "Path to the history database")

	return cmd
}

// searchCommand implements the search command logic
func searchCommand(cmd *cobra.Command, args []string) error {
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

	workers := cfg.Workers
	if flagWorkers, _ := cmd.Flags().GetInt("workers"); flagWorkers >= 0 {
		workers = flagWorkers
	}
	substring := cfg.Substring
	if cmd.Flags().Changed("substring") {
		substring, _ = cmd.Flags().GetBool("substring")
	}
	excludeDirs := cfg.ExcludeDirs
	if cmd.Flags().Changed("exclude-dir") {
		excludeDirs, _ = cmd.Flags().GetStringSlice("exclude-dir")
	}
	maxDepth := cfg.MaxDepth
	if flagDepth, _ := cmd.Flags().GetInt("max-depth"); flagDepth >= 0 {
		maxDepth = flagDepth
	}

	// Matches go straight to stdout; a collecting sink shadows them when
	// the run is being recorded.
	var (
		sink    finder.ResultSink = finder.NewWriterSink(cmd.OutOrStdout())
		collect *finder.CollectSink
	)
	save, _ := cmd.Flags().GetBool("save")
	save = save || cfg.History.Enabled
	if save {
		collect = finder.NewCollectSink()
		sink = finder.NewTeeSink(sink, collect)
	}

	f, err := finder.New(finder.Options{
		Root:        root,
		Pattern:     pattern,
		Workers:     workers,
		Substring:   substring,
		ExcludeDirs: excludeDirs,
		MaxDepth:    maxDepth,
		Sink:        sink,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	log.Debugf("scanning %s for %q with %d workers", root, pattern, f.Workers())

	started := time.Now()
	stats, err := f.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}
	elapsed := time.Since(started)

	if stats.Matches == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No files matched the pattern.")
	}
	log.Infof("scanned %d directories, tested %d files, %d matches, %d warnings in %s",
		stats.DirsScanned, stats.FilesTested, stats.Matches, stats.Warnings, elapsed.Round(time.Millisecond))

	if save {
		run := history.Run{
			ID:        history.NewRunID(),
			Root:      root,
			Pattern:   pattern,
			Workers:   f.Workers(),
			Substring: substring,
			Matches:   stats.Matches,
			Warnings:  stats.Warnings,
			StartedAt: started,
			Duration:  elapsed,
		}
		if err := saveRun(cfg, run, collect.Paths()); err != nil {
			return err
		}
		log.Infof("run recorded as %s", run.ID)
	}

	return nil
}

// loadMergedConfig loads the config file named by --config (or the default
// location) and validates it.
func loadMergedConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if dir, _ := cmd.Flags().GetString("log-dir"); dir != "" {
		cfg.LogDir = dir
	}
	if db, _ := cmd.Flags().GetString("history-db"); db != "" {
		cfg.History.DBPath = db
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildLogger assembles the console logger, plus a file logger when a log
// directory was configured (via the log_dir key or the --log-dir flag).
func buildLogger(cmd *cobra.Command, cfg *config.Config) (logger.Logger, *logger.FileLogger, error) {
	console := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	if cfg.LogDir == "" {
		return console, nil, nil
	}

	fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return logger.NewMultiLogger(console, fileLog), fileLog, nil
}

// saveRun persists one completed run to the history database.
func saveRun(cfg *config.Config, run history.Run, paths []string) error {
	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveRun(run, paths)
}
