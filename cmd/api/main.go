package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})
	logging.Info().Str("environment", cfg.Environment.String()).Msg("Starting Foodgram API")
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	images, err := newImageStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to configure image storage")
	}

	var blocklist service.TokenBlocklist
	if redisClient != nil {
		blocklist = service.NewRedisTokenBlocklist(redisClient)
	}
	limiter := middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreationLimit)

	services := router.NewServices(cfg, db, images, blocklist, limiter)
	srv := server.New(cfg, router.SetupRouter(cfg, db, services, images))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Fatal().Err(err).Msg("Server error")
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("Received signal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logging.Error().Err(err).Msg("Server shutdown error")
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logging.Info().Msg("Server stopped")
}

func newImageStore(cfg *config.Config) (service.ImageStore, error) {
	if cfg.StorageBackend == config.StorageS3 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("bucket", s3Config.BucketName).Msg("Storing images in S3")
		return service.NewS3ImageStore(s3Config), nil
	}

	if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
		return nil, err
	}
	logging.Info().Str("root", cfg.MediaRoot).Msg("Storing images on local disk")
	return service.NewLocalImageStore(cfg.MediaRoot, cfg.PublicURL+cfg.MediaURL), nil
}
