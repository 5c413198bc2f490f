package main

import (
	"github.com/spf13/cobra"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/loader"
	"github.com/foodgram/backend/internal/logging"
)

func main() {
	var (
		dataDir     string
		databaseURL string
		batchSize   int
	)

	cmd := &cobra.Command{
		Use:          "load_data <ingredients.csv> <tags.csv>",
		Short:        "Replace the ingredient and tag catalogs with CSV data",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
			if databaseURL != "" {
				cfg.Database.URL = databaseURL
			}

			ctx := cmd.Context()
			db, err := database.Open(ctx, cfg.Database, cfg.Env)
			if err != nil {
				return err
			}
			if err := database.Migrate(ctx, db, cfg.Database.MigrationsDir); err != nil {
				return err
			}

			res, err := loader.New(db, batchSize).LoadFiles(ctx, dataDir, args[0], args[1])
			if err != nil {
				return err
			}
			logging.Info().Int("ingredients", res.Ingredients).Int("tags", res.Tags).Msg("catalog data loaded")
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "directory holding the CSV files")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "database connection string (overrides the configuration)")
	cmd.Flags().IntVar(&batchSize, "batch-size", loader.DefaultBatchSize, "rows per insert statement")

	if err := cmd.Execute(); err != nil {
		logging.Fatal().Err(err).Msg("load_data failed")
	}
}
