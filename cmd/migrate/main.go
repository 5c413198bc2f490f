package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
)

var (
	databaseURL   string
	migrationsDir string
)

func main() {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the PostgreSQL schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string (defaults to the configured database)")
	root.PersistentFlags().StringVar(&migrationsDir, "dir", "", "directory holding the .sql migration files")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, closeDB, err := openMigrator()
			if err != nil {
				return err
			}
			defer closeDB()

			applied, err := m.Up(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				logging.Info().Msg("schema is up to date")
			}
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recently applied migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, closeDB, err := openMigrator()
			if err != nil {
				return err
			}
			defer closeDB()

			_, err = m.Down(cmd.Context())
			if errors.Is(err, database.ErrNoMigrations) {
				logging.Info().Msg("no migrations to roll back")
				return nil
			}
			return err
		},
	})

	if err := root.Execute(); err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}
}

func openMigrator() (*database.Migrator, func(), error) {
	dsn, dir := databaseURL, migrationsDir
	if dsn == "" || dir == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		if dsn == "" {
			dsn = cfg.Database.DSN()
		}
		if dir == "" {
			dir = cfg.Database.MigrationsDir
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database.NewMigrator(db, dir), func() { _ = db.Close() }, nil
}
