package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/goAccount/internal/config"
	"github.com/MrEthical07/goAccount/internal/logging"
)

var (
	envFile string
	cfg     config.Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "goaccount",
	Short: "Account and session service",
	Long: `goaccount serves registration, login and token reissue over HTTP.

Sessions live in Redis; accounts live in PostgreSQL, SQLite or memory,
selected with GOACCOUNT_DIRECTORY_DRIVER.

Example usage:
  goaccount serve              # run the HTTP API
  goaccount migrate            # create the accounts schema
  goaccount loadtest           # measure authenticate and reissue throughput`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}

// loadConfig is the PersistentPreRunE of commands that need the full
// process configuration.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(envFile)
	if err != nil {
		return err
	}
	logger = logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return nil
}
