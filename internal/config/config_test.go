package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Env:                     "development",
		JWTSecret:               "secure-secret-at-least-32-chars-long",
		DBPassword:              "secure-password",
		DBSSLMode:               "disable",
		Port:                    "8080",
		DBSchemaMode:            "hybrid",
		StoreTimeoutMS:          5000,
		StoreRetryMaxTries:      3,
		StoreRetryInitialMS:     100,
		ConversationFanoutLimit: 8,
		TracingSampleRatio:      1,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateLimits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero store timeout", func(c *Config) { c.StoreTimeoutMS = 0 }},
		{"zero retries", func(c *Config) { c.StoreRetryMaxTries = 0 }},
		{"negative retry interval", func(c *Config) { c.StoreRetryInitialMS = -1 }},
		{"zero fanout", func(c *Config) { c.ConversationFanoutLimit = 0 }},
		{"unknown schema mode", func(c *Config) { c.DBSchemaMode = "magic" }},
		{"sample ratio above one", func(c *Config) { c.TracingSampleRatio = 1.5 }},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "require"
			c.JWTSecret = defaultJWTSecret
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	c := validConfig()
	c.ConversationCacheTTLSecs = 300
	assert.Equal(t, 5*time.Second, c.StoreTimeout())
	assert.Equal(t, 100*time.Millisecond, c.StoreRetryInitial())
	assert.Equal(t, 5*time.Minute, c.ConversationCacheTTL())
}

func TestLoadConfig_Normalization(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_SCHEMA_MODE", "SQL")
	t.Setenv("STORE_TIMEOUT_MS", "750")
	defer viper.Reset()

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sql", c.DBSchemaMode)
	assert.Equal(t, 750*time.Millisecond, c.StoreTimeout())
	assert.Equal(t, 8, c.ConversationFanoutLimit)
}
