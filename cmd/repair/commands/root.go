package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "repair",
	Short: "Realign study and assay folder references with the backends",
	Long: `repair checks the storage and notebook folders recorded for a study or
assay against the configured backends. A missing folder is located by its
expected name and attached, or created when it does not exist.

Configuration is read from the same environment (and .env file) as the
REST server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}
