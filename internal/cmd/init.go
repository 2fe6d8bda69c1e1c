package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/ffind/internal/config"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a default .ffind/config.yaml in the current directory (or the
directory given with --dir), ready to edit.

Examples:
  ffind init
  ffind init --dir ~/projects/site
  ffind init --force`,
		Args: cobra.NoArgs,
		RunE: initCommand,
	}

	cmd.Flags().String("dir", ".", "Directory whose .ffind/config.yaml is written")
	cmd.Flags().Bool("force", false, "Overwrite an existing config file")

	return cmd
}

// initCommand implements the init command logic
func initCommand(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	force, _ := cmd.Flags().GetBool("force")

	path := config.ConfigPath(dir)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
