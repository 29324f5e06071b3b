package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-news-backend/internal/config"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/sysutil"
)

var flagSeedFile string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flagEnvFile)
		if err != nil {
			return err
		}
		return migrate(cfg)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the database and load fixture data",
	Long: `Drop and recreate every table, then insert the topics, users, articles
and comments from a YAML fixture. Uses SEED_PATH unless --file is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flagEnvFile)
		if err != nil {
			return err
		}
		return seed(cmd.Context(), cfg, sysutil.FirstNonEmpty(flagSeedFile, cfg.SeedPath))
	},
}

func init() {
	seedCmd.Flags().StringVar(&flagSeedFile, "file", "", "fixture path, overrides SEED_PATH")
}

func migrate(cfg config.Config) error {
	db, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	closeStore(db)
	log.Info().Str("driver", cfg.DB.Driver).Msg("schema migrated")
	return nil
}

func seed(ctx context.Context, cfg config.Config, path string) error {
	fixture, err := repo.LoadSeed(path)
	if err != nil {
		return fmt.Errorf("loading fixture: %w", err)
	}
	db, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer closeStore(db)

	if err := repo.ApplySeed(ctx, db, fixture); err != nil {
		return fmt.Errorf("seeding: %w", err)
	}
	log.Info().
		Str("file", path).
		Int("articles", len(fixture.Articles)).
		Int("comments", len(fixture.Comments)).
		Msg("store seeded")
	return nil
}
