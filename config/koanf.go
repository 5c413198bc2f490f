package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/foodgram/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix selects generic environment overrides, e.g. FOODGRAM_API__PAGE_SIZE.
const EnvPrefix = "FOODGRAM_"

// DevJWTSecret is the development signing key. Production refuses it.
const DevJWTSecret = "foodgram-dev-secret"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			Name:            "foodgram",
			SSLMode:         "disable",
			MigrationsDir:   "migrations",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    "6379",
		},
		Auth: AuthConfig{
			JWTSecret: DevJWTSecret,
			TokenTTL:  24 * time.Hour,
		},
		API: APIConfig{
			PageSize:          6,
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"http://localhost:3000"},
		},
		Storage: StorageConfig{
			Backend:  "disk",
			MediaDir: "media",
			MediaURL: "/media/",
			S3Prefix: "recipes/images",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// legacyEnv maps the flat variable names used by the deployment files to
// koanf paths.
var legacyEnv = map[string]string{
	"server_host":         "server.host",
	"server_port":         "server.port",
	"database_url":        "database.url",
	"db_driver":           "database.driver",
	"db_host":             "database.host",
	"db_port":             "database.port",
	"db_user":             "database.user",
	"db_password":         "database.password",
	"db_name":             "database.name",
	"db_ssl_mode":         "database.ssl_mode",
	"migrations_dir":      "database.migrations_dir",
	"redis_enabled":       "redis.enabled",
	"redis_url":           "redis.url",
	"redis_host":          "redis.host",
	"redis_port":          "redis.port",
	"redis_password":      "redis.password",
	"jwt_secret":          "auth.jwt_secret",
	"token_ttl":           "auth.token_ttl",
	"page_size":           "api.page_size",
	"rate_limit_requests": "api.rate_limit_requests",
	"rate_limit_window":   "api.rate_limit_window",
	"cors_origins":        "api.cors_origins",
	"storage_backend":     "storage.backend",
	"media_dir":           "storage.media_dir",
	"media_url":           "storage.media_url",
	"s3_bucket_name":      "storage.s3_bucket",
	"aws_region":          "storage.s3_region",
	"s3_endpoint":         "storage.s3_endpoint",
	"log_level":           "log.level",
	"log_format":          "log.format",
}

func load(envName Environment) (*Config, error) {
	if envName == Development {
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(".env"); err != nil {
				return nil, fmt.Errorf("failed to load .env: %w", err)
			}
		}
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if raw, ok := k.Get("api.cors_origins").(string); ok {
		if err := k.Set("api.cors_origins", splitList(raw)); err != nil {
			return nil, fmt.Errorf("failed to parse cors origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc returns the koanf path for an environment variable, or ""
// to ignore it.
func envTransformFunc(key string) string {
	if strings.HasPrefix(key, EnvPrefix) {
		key = strings.TrimPrefix(key, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(key), "__", ".")
	}
	return legacyEnv[strings.ToLower(key)]
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
