package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the accounts schema",
	Long: `Applies the schema for the configured directory driver.

The memory driver has no schema and the command is a no-op for it.`,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, closeDir, err := openDirectory(cmd.Context(), cfg, logger, true)
		if err != nil {
			return err
		}
		closeDir()
		logger.Info().Str("directory", cfg.DirectoryDriver).Msg("schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
