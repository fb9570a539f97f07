package main

import (
	"context"
	"flag"
	"os"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Demo accounts for local development. Every account shares one password.
var testUsers = []types.RegisterRequest{
	{Email: "vasya.pupkin@example.com", Username: "vasya.pupkin", FirstName: "Vasya", LastName: "Pupkin"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
	{Email: "bob.wilson@example.com", Username: "bobwilson", FirstName: "Bob", LastName: "Wilson"},
}

func main() {
	password := flag.String("password", "testpassword123", "Password for every seeded user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Environment == config.Production {
		logging.Fatal().Msg("Refusing to seed test users in production")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("Failed to run migrations")
	}

	images := service.NewLocalImageStore(cfg.MediaRoot, cfg.PublicURL+cfg.MediaURL)
	users := service.NewUserService(db, images)
	subscriptions := service.NewSubscriptionService(db, images)
	ctx := context.Background()

	ids := make([]uint, 0, len(testUsers))
	for _, u := range testUsers {
		req := u
		req.Password = *password

		var existing models.User
		if err := db.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error; err == nil {
			logging.Info().Str("username", req.Username).Msg("User already exists, skipping")
			ids = append(ids, existing.ID)
			continue
		}

		created, err := users.Register(ctx, &req)
		if err != nil {
			logging.Fatal().Err(err).Str("username", req.Username).Msg("Failed to create user")
		}
		ids = append(ids, created.ID)
		logging.Info().Str("username", created.Username).Uint("id", created.ID).Msg("Created user")
	}

	// Everyone follows the first account so the subscriptions page has content.
	for _, id := range ids[1:] {
		_, err := subscriptions.Subscribe(ctx, id, ids[0], 0)
		if err != nil && !domainerrors.IsCode(err, domainerrors.CodeConflict) {
			logging.Fatal().Err(err).Uint("user_id", id).Msg("Failed to subscribe")
		}
	}

	logging.Info().Int("users", len(ids)).Str("password", *password).Msg("Test users ready")
}
