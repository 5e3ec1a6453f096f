// Package commands implements the medley CLI's cobra command tree,
// structured after the teacher project's own root-command wiring:
// a PersistentPreRunE that brings up logging and config before any
// subcommand runs.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/hpcc-systems/Medley/config"
	"github.com/hpcc-systems/Medley/logger"
)

var (
	jsonOutput bool
	configPath string

	jobConfig config.Job
)

// NewRootCommand builds the medley root command and its subcommands.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "medley",
		Short: "Fuzzy record-matching index builder and query tool",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Initialize(jsonOutput); err != nil {
				return err
			}
			job, err := config.Load(configPath)
			if err != nil {
				return err
			}
			jobConfig = job
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit structured JSON logs instead of console output")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a medley.toml job config (optional)")

	root.AddCommand(newBuildIndexCommand())
	root.AddCommand(newQueryByIDCommand())
	root.AddCommand(newQueryByExampleCommand())
	root.AddCommand(newVersionCommand())

	return root
}
