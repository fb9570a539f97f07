package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/loader"
	"github.com/pageza/foodgram/backend/internal/logging"
)

func main() {
	dir := flag.String("path", "data", "Directory containing ingredients.csv and tags.csv")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("Failed to run migrations")
	}

	l := loader.New(db)
	ctx := context.Background()

	steps := []struct {
		file string
		load func(context.Context, *os.File) (loader.Result, error)
	}{
		{loader.IngredientsFile, func(ctx context.Context, f *os.File) (loader.Result, error) { return l.LoadIngredients(ctx, f) }},
		{loader.TagsFile, func(ctx context.Context, f *os.File) (loader.Result, error) { return l.LoadTags(ctx, f) }},
	}

	for _, step := range steps {
		path := filepath.Join(*dir, step.file)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				logging.Warn().Str("file", path).Msg("File not found, skipping")
				continue
			}
			logging.Fatal().Err(err).Str("file", path).Msg("Failed to open file")
		}

		res, err := step.load(ctx, f)
		f.Close()
		if err != nil {
			logging.Fatal().Err(err).Str("file", path).Msg("Failed to load data")
		}
		logging.Info().
			Str("file", path).
			Int("created", res.Created).
			Int("existing", res.Existing).
			Int("skipped", res.Skipped).
			Msg("Loaded successfully")
	}
}
