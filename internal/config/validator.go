package config

import "fmt"

// MinAPIKeyLength is the shortest API key accepted without a warning
const MinAPIKeyLength = 32

// Values shipped in example env files
var exampleSecrets = map[string]bool{
	"change_this_secure_password":       true,
	"generate_with_openssl_rand_hex_32": true,
}

// Warnings reports settings that load fine but are unsafe or surprising.
// Load already rejected everything that is outright invalid.
func (c *Config) Warnings() []string {
	var warnings []string

	if exampleSecrets[c.APIKey] {
		warnings = append(warnings, "API_KEY is the example value - generate one with: openssl rand -hex 32")
	} else if len(c.APIKey) < MinAPIKeyLength {
		warnings = append(warnings, fmt.Sprintf("API_KEY is shorter than %d characters", MinAPIKeyLength))
	}

	if c.Storage == StoragePostgres && (exampleSecrets[c.DBPassword] || (c.DBPassword == "postgres" && !c.isDev())) {
		warnings = append(warnings, "DB_PASSWORD is a default value")
	}

	if c.Storage == StorageMemory && !c.isDev() {
		warnings = append(warnings, "STORAGE=memory keeps counters only until restart")
	}

	if c.DiscordToken == "" && len(c.DiscordAuditChannels) > 0 {
		warnings = append(warnings, "DISCORD_AUDIT_CHANNELS is set but DISCORD_TOKEN is empty, audit entries are not mirrored")
	}

	if c.CollapseDelay == 0 {
		warnings = append(warnings, "COLLAPSE_DELAY is 0, every counter change collapses hierarchy roles immediately")
	}

	return warnings
}

func (c *Config) isDev() bool {
	return c.Environment == "dev" || c.Environment == "development" || c.Environment == "test"
}
