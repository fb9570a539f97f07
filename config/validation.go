package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" || cfg.DBName == "" || cfg.DBUser == "" {
			add("DB_HOST", "DB_HOST, DB_NAME and DB_USER are required for postgres")
		}
	case DriverSQLite:
		if cfg.Environment == Production {
			add("DB_DRIVER", "sqlite is not allowed in production")
		}
		if cfg.DBPath == "" {
			add("DB_PATH", "is required for sqlite")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	switch cfg.StorageBackend {
	case StorageS3:
		if cfg.S3BucketName == "" {
			add("S3_BUCKET_NAME", "is required when STORAGE_BACKEND=s3")
		}
	case StorageLocal:
		if cfg.MediaRoot == "" {
			add("MEDIA_ROOT", "is required when STORAGE_BACKEND=local")
		}
	default:
		add("STORAGE_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.StorageBackend))
	}

	if cfg.TokenTTL <= 0 {
		add("TOKEN_TTL", "must be positive")
	}
	if cfg.RecipeCreationLimit < 0 {
		add("RECIPE_CREATION_LIMIT", "must not be negative")
	}

	// Sensitive values
	switch cfg.Environment {
	case CI:
		if cfg.JWTSecret == "" {
			add("JWT_SECRET", "environment variable is required in CI environment")
		}
		if cfg.DBDriver == DriverPostgres && cfg.DBPassword == "" {
			add("DB_PASSWORD", "environment variable is required in CI environment")
		}
	case Production:
		if cfg.JWTSecret == "" {
			add("jwt_secret", "secret is required")
		}
		if cfg.DBPassword == "" {
			add("db_password", "secret is required")
		}
		if cfg.RedisURL == "" {
			add("REDIS_URL", "is required in production")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}
