// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Archive drivers.
const (
	ArchiveDriverPostgres = "postgres"
	ArchiveDriverSQLite   = "sqlite"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	// RandomSeed seeds every simulation and sampling draw. 0 means time based.
	RandomSeed int64 `mapstructure:"RANDOM_SEED"`

	StatsCacheTTLSeconds int `mapstructure:"STATS_CACHE_TTL_SECONDS"`

	ArchiveDriver   string `mapstructure:"ARCHIVE_DRIVER"`
	ArchiveDSN      string `mapstructure:"ARCHIVE_DSN"`
	ArchiveSchedule string `mapstructure:"ARCHIVE_SCHEDULE"`
	DBHost          string `mapstructure:"DB_HOST"`
	DBPort          string `mapstructure:"DB_PORT"`
	DBUser          string `mapstructure:"DB_USER"`
	DBPassword      string `mapstructure:"DB_PASSWORD"`
	DBName          string `mapstructure:"DB_NAME"`
	DBSSLMode       string `mapstructure:"DB_SSLMODE"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from .env, file and environment variables.
func LoadConfig() (*Config, error) {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// the base file is optional
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "8380")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("RANDOM_SEED", 0)
	viper.SetDefault("STATS_CACHE_TTL_SECONDS", 30)
	viper.SetDefault("ARCHIVE_DRIVER", "")
	viper.SetDefault("ARCHIVE_DSN", "bridgefeed_archive.db")
	viper.SetDefault("ARCHIVE_SCHEDULE", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "bridgefeed")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.ArchiveDriver = strings.ToLower(strings.TrimSpace(c.ArchiveDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.TracingExporter = strings.ToLower(strings.TrimSpace(c.TracingExporter))
}

// IsProduction reports whether the app runs with production rules.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// ArchiveEnabled reports whether an archive database is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveDriver != ""
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.StatsCacheTTLSeconds < 0 {
		return errors.New("STATS_CACHE_TTL_SECONDS must not be negative")
	}
	if c.TracingSamplerRatio < 0 || c.TracingSamplerRatio > 1 {
		return errors.New("TRACING_SAMPLER_RATIO must be between 0 and 1")
	}

	switch c.ArchiveDriver {
	case "":
		if c.ArchiveSchedule != "" {
			return errors.New("ARCHIVE_SCHEDULE requires ARCHIVE_DRIVER")
		}
	case ArchiveDriverSQLite:
		if c.ArchiveDSN == "" {
			return errors.New("ARCHIVE_DSN is required for the sqlite archive driver")
		}
	case ArchiveDriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			return errors.New("DB_HOST and DB_NAME are required for the postgres archive driver")
		}
	default:
		return fmt.Errorf("unknown ARCHIVE_DRIVER %q", c.ArchiveDriver)
	}

	if c.TracingEnabled && c.TracingExporter != "stdout" && c.TracingExporter != "otlp" {
		return fmt.Errorf("unknown TRACING_EXPORTER %q", c.TracingExporter)
	}

	if c.IsProduction() {
		if c.ArchiveDriver == ArchiveDriverPostgres {
			if c.DBPassword == "password" || c.DBPassword == "" {
				return errors.New("a strong DB_PASSWORD is required in production")
			}
			if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
				return errors.New("DB_SSLMODE must enable SSL in production")
			}
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
		if c.RandomSeed != 0 {
			log.Println("WARNING: RANDOM_SEED is fixed in production; demo data will repeat.")
		}
	}

	return nil
}
