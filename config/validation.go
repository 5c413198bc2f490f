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

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// ValidateConfig checks the configuration against the rules of its environment.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.Server.Port == "" {
		add("server.port", "is required")
	}

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.URL == "" && (cfg.Database.Host == "" || cfg.Database.Name == "") {
			add("database", "url or host and name are required")
		}
	case "sqlite":
		if cfg.Database.URL == "" && cfg.Database.Name == "" {
			add("database.name", "sqlite file path is required")
		}
	default:
		add("database.driver", fmt.Sprintf("unsupported driver %q", cfg.Database.Driver))
	}

	if cfg.Auth.JWTSecret == "" {
		add("auth.jwt_secret", "is required")
	}
	if cfg.Auth.TokenTTL <= 0 {
		add("auth.token_ttl", "must be positive")
	}

	if cfg.API.PageSize <= 0 {
		add("api.page_size", "must be positive")
	}
	if cfg.API.RateLimitRequests < 0 {
		add("api.rate_limit_requests", "must not be negative")
	}

	switch cfg.Storage.Backend {
	case "disk":
		if cfg.Storage.MediaDir == "" {
			add("storage.media_dir", "is required for disk storage")
		}
	case "s3":
		if cfg.Storage.S3Bucket == "" {
			add("storage.s3_bucket", "is required for s3 storage")
		}
	default:
		add("storage.backend", fmt.Sprintf("unsupported backend %q", cfg.Storage.Backend))
	}

	switch cfg.Log.Format {
	case "json", "console":
	default:
		add("log.format", "must be json or console")
	}

	if cfg.Env == Production || cfg.Env == CI {
		if cfg.Auth.JWTSecret == DevJWTSecret {
			add("auth.jwt_secret", "the development secret is not allowed outside development")
		}
		if cfg.Database.Driver == "postgres" && cfg.Database.URL == "" && cfg.Database.Password == "" {
			add("database.password", "is required")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
