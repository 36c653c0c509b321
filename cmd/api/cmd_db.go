package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/georgemunganga/printa-apparel/internal/config"
	"github.com/georgemunganga/printa-apparel/internal/modules/catalog"
	"github.com/georgemunganga/printa-apparel/internal/platform/database"
)

// loadDatabaseConfig loads config and checks that a database is configured.
func loadDatabaseConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

// printa migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDatabaseConfig()
		if err != nil {
			return err
		}
		fmt.Println("Running migrations…")
		if err := database.Migrate(cmd.Context(), cfg.DatabaseURL); err != nil {
			return err
		}
		fmt.Println("Migrations up to date.")
		return nil
	},
}

// printa seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the product catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDatabaseConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		seed := catalog.DefaultSeed()
		svc := catalog.NewService(catalog.NewPostgresRepository(db))
		if err := svc.Seed(cmd.Context(), seed); err != nil {
			return err
		}
		fmt.Printf("Seeded product %q.\n", seed.Slug)
		return nil
	},
}
