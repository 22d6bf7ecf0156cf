package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func safeConfig() *Config {
	return &Config{
		Environment:   "production",
		APIKey:        strings.Repeat("k", MinAPIKeyLength),
		Storage:       StoragePostgres,
		DBPassword:    "s3cret-enough",
		CollapseDelay: DefaultCollapseDelay,
	}
}

func TestWarnings_None(t *testing.T) {
	assert.Empty(t, safeConfig().Warnings())
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"example api key", func(c *Config) { c.APIKey = "generate_with_openssl_rand_hex_32" }, "API_KEY is the example value"},
		{"short api key", func(c *Config) { c.APIKey = "abc" }, "API_KEY is shorter"},
		{"default db password", func(c *Config) { c.DBPassword = "postgres" }, "DB_PASSWORD"},
		{"memory in production", func(c *Config) { c.Storage = StorageMemory }, "STORAGE=memory"},
		{"audit channels without token", func(c *Config) {
			c.DiscordAuditChannels = map[string]string{"g1": "c1"}
		}, "DISCORD_AUDIT_CHANNELS"},
		{"no collapse delay", func(c *Config) { c.CollapseDelay = 0 }, "COLLAPSE_DELAY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := safeConfig()
			tt.mutate(c)

			warnings := c.Warnings()

			if assert.Len(t, warnings, 1) {
				assert.Contains(t, warnings[0], tt.want)
			}
		})
	}
}

func TestWarnings_DevDefaultsAreQuiet(t *testing.T) {
	c := safeConfig()
	c.Environment = "dev"
	c.DBPassword = "postgres"
	c.Storage = StorageMemory

	assert.Empty(t, c.Warnings())
}
