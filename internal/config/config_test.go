package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                "8080",
		Env:                 "development",
		TracingExporter:     "stdout",
		TracingSamplerRatio: 1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"negative cache ttl", func(c *Config) { c.StatsCacheTTLSeconds = -1 }, true},
		{"sampler ratio above one", func(c *Config) { c.TracingSamplerRatio = 1.5 }, true},
		{"unknown archive driver", func(c *Config) { c.ArchiveDriver = "mongo" }, true},
		{"schedule without driver", func(c *Config) { c.ArchiveSchedule = "@hourly" }, true},
		{"sqlite without dsn", func(c *Config) { c.ArchiveDriver = ArchiveDriverSQLite }, true},
		{"sqlite with dsn", func(c *Config) {
			c.ArchiveDriver = ArchiveDriverSQLite
			c.ArchiveDSN = "archive.db"
		}, false},
		{"unknown exporter", func(c *Config) {
			c.TracingEnabled = true
			c.TracingExporter = "jaeger"
		}, true},
		{"production postgres weak password", func(c *Config) {
			c.Env = "production"
			c.ArchiveDriver = ArchiveDriverPostgres
			c.DBHost, c.DBName = "db", "bridgefeed"
			c.DBPassword = "password"
			c.DBSSLMode = "require"
		}, true},
		{"production postgres without ssl", func(c *Config) {
			c.Env = "prod"
			c.ArchiveDriver = ArchiveDriverPostgres
			c.DBHost, c.DBName = "db", "bridgefeed"
			c.DBPassword = "s3cure-and-long"
			c.DBSSLMode = "disable"
		}, true},
		{"production postgres ok", func(c *Config) {
			c.Env = "production"
			c.ArchiveDriver = ArchiveDriverPostgres
			c.DBHost, c.DBName = "db", "bridgefeed"
			c.DBPassword = "s3cure-and-long"
			c.DBSSLMode = "verify-full"
		}, false},
		{"development postgres with defaults", func(c *Config) {
			c.ArchiveDriver = ArchiveDriverPostgres
			c.DBHost, c.DBName = "localhost", "bridgefeed"
			c.DBPassword = "password"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9999")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("ARCHIVE_DRIVER", "  SQLite ")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, int64(42), c.RandomSeed)
	assert.Equal(t, ArchiveDriverSQLite, c.ArchiveDriver)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 30, c.StatsCacheTTLSeconds)
	assert.True(t, c.ArchiveEnabled())
	assert.False(t, c.IsProduction())
}

func TestLoadConfig_MissingProfileFile(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "staging-that-does-not-exist")

	_, err := LoadConfig()
	assert.Error(t, err)
}
