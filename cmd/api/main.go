package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/server"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logging.Info().Str("env", string(cfg.Env)).Str("database", cfg.Database.Redacted()).Msg("starting foodgram")

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database, cfg.Env)
	if err != nil {
		return err
	}
	if err := database.Migrate(ctx, db, cfg.Database.MigrationsDir); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	images, mediaDir, err := imageStore(ctx, cfg)
	if err != nil {
		return err
	}

	var denylist service.TokenDenylist = service.NewMemoryDenylist()
	rateConfig := middleware.RateLimitConfig{
		Window:    cfg.API.RateLimitWindow,
		Limit:     cfg.API.RateLimitRequests,
		KeyPrefix: "foodgram:ratelimit",
	}
	var limiter middleware.Limiter = middleware.NewMemoryRateLimiter(rateConfig)
	if redisClient != nil {
		denylist = service.NewRedisDenylist(redisClient)
		limiter = middleware.NewRateLimiter(redisClient, rateConfig)
	}

	srv := server.New(cfg, server.Deps{
		DB: db,
		Services: api.Services{
			Auth:        service.NewAuthService(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, denylist),
			Users:       service.NewUserService(db),
			Recipes:     service.NewRecipeService(db, images),
			Tags:        service.NewTagService(db),
			Ingredients: service.NewIngredientService(db),
		},
		Limiter:  limiter,
		MediaDir: mediaDir,
	})

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	logging.Info().Msg("server stopped")
	return nil
}

// imageStore picks the configured image backend. The returned directory is
// non-empty when images live on local disk and must be served as static files.
func imageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, string, error) {
	switch cfg.Storage.Backend {
	case "s3":
		s3Config, err := config.NewS3Config(ctx, cfg.Storage)
		if err != nil {
			return nil, "", err
		}
		return storage.NewS3Store(s3Config, cfg.Storage.S3Prefix), "", nil
	case "", "disk":
		store, err := storage.NewDiskStore(cfg.Storage.MediaDir, cfg.Storage.MediaURL)
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}
