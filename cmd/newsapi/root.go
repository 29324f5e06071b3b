package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-news-backend/internal/config"
	"github.com/tbourn/go-news-backend/internal/sysutil"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flagEnvFile string

var rootCmd = &cobra.Command{
	Use:           "newsapi",
	Short:         "News articles REST API",
	Long:          "newsapi serves topics, users, articles and comments over HTTP, backed by SQLite or Postgres.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newsapi %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("newsapi failed")
		os.Exit(1)
	}
}

// loadConfig applies the dotenv file (a missing file is fine), reads the
// environment and configures the global logger.
func loadConfig(envFile string) (config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	sysutil.ConfigureLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}
