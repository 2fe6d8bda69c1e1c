// Package config loads ffind configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrison/ffind/internal/filelock"
)

// HistoryConfig represents run-history persistence configuration.
type HistoryConfig struct {
	// Enabled turns on run-history persistence for every search
	// (equivalent to always passing --save)
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`

	// KeepRuns is the number of most recent runs listed by default
	KeepRuns int `yaml:"keep_runs"`
}

// Config represents ffind configuration options.
type Config struct {
	// Workers is the number of scan workers (0 = host parallelism)
	Workers int `yaml:"workers"`

	// Substring treats wildcard-free patterns as case-insensitive
	// substring tests instead of exact matches
	Substring bool `yaml:"substring"`

	// ExcludeDirs is a list of directory names to skip entirely
	// (e.g., ".git", "node_modules")
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// MaxDepth limits recursion depth (0 = unlimited, 1 = root only)
	MaxDepth int `yaml:"max_depth"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where scan logs are written.
	// Empty disables file logging.
	LogDir string `yaml:"log_dir"`

	// History contains run-history persistence configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Workers:   0, // host parallelism
		Substring: false,
		MaxDepth:  0, // unlimited
		LogLevel:  "info",
		LogDir:    "", // console only
		History: HistoryConfig{
			Enabled:  false,
			DBPath:   filepath.Join(".ffind", "history.db"),
			KeepRuns: 20,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from the file over the defaults.
	if fileCfg.Workers != 0 {
		cfg.Workers = fileCfg.Workers
	}
	if fileCfg.Substring {
		cfg.Substring = fileCfg.Substring
	}
	if len(fileCfg.ExcludeDirs) > 0 {
		cfg.ExcludeDirs = fileCfg.ExcludeDirs
	}
	if fileCfg.MaxDepth != 0 {
		cfg.MaxDepth = fileCfg.MaxDepth
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}
	if fileCfg.History.Enabled {
		cfg.History.Enabled = fileCfg.History.Enabled
	}
	if fileCfg.History.DBPath != "" {
		cfg.History.DBPath = fileCfg.History.DBPath
	}
	if fileCfg.History.KeepRuns != 0 {
		cfg.History.KeepRuns = fileCfg.History.KeepRuns
	}

	return cfg, nil
}

// ConfigPath returns the path of the config file under dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ".ffind", "config.yaml")
}

// LoadConfigFromDir loads configuration from .ffind/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(ConfigPath(dir))
}

// Save writes the configuration to path as YAML, creating parent
// directories as needed. The write is atomic, so a concurrent reader never
// sees a partially written file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return filelock.AtomicWrite(path, data)
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}
	if c.History.KeepRuns < 0 {
		return fmt.Errorf("history.keep_runs must be >= 0, got %d", c.History.KeepRuns)
	}

	return nil
}
