// Package config loads application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int    `validate:"min=1,max=65535"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	LogFormat   string `validate:"oneof=text json"`
	LogDir      string
	ServiceName string
	Version     string
	Environment string `validate:"required"`
	APIKey      string // API key for authentication
	// TrustedProxies may report the client address in X-Forwarded-For
	TrustedProxies []string

	Storage           string `validate:"oneof=postgres memory"`
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int `validate:"min=1"`
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration

	// DiscordToken enables role changes and audit mirroring when set
	DiscordToken         string
	DiscordAuditChannels map[string]string

	// ResultPublicKeyPath enables game result ingestion when set
	ResultPublicKeyPath string
	// GuildSeedPath is imported at startup when set
	GuildSeedPath string

	CollapseDelay   time.Duration `validate:"min=0"`
	LadderCacheTTL  time.Duration `validate:"gt=0"`
	LadderCacheSize int           `validate:"min=1"`
	QueryTimeout    time.Duration `validate:"gt=0"`

	WorkerCount     int           `validate:"min=1"`
	WorkerQueueSize int           `validate:"min=1"`
	JobTimeout      time.Duration `validate:"gt=0"`

	AuditRetentionDays int           `validate:"min=1"`
	AuditCleanupEvery  time.Duration `validate:"gt=0"`

	EventMaxRetries int `validate:"min=0"`
	EventRetryDelay time.Duration
	DeadLetterPath  string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
		LogDir:      getEnv("LOG_DIR", "logs"),
		ServiceName: getEnv("SERVICE_NAME", "winledger"),
		Version:     getEnv("VERSION", "dev"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		APIKey:      getEnv("API_KEY", ""),

		Storage:           strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "winledger"),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),

		DiscordToken:        getEnv("DISCORD_TOKEN", ""),
		ResultPublicKeyPath: getEnv("RESULT_PUBLIC_KEY_PATH", ""),
		GuildSeedPath:       getEnv("GUILD_SEED_PATH", ""),

		CollapseDelay:   getEnvAsDuration("COLLAPSE_DELAY", DefaultCollapseDelay),
		LadderCacheTTL:  getEnvAsDuration("LADDER_CACHE_TTL", DefaultLadderCacheTTL),
		LadderCacheSize: getEnvAsInt("LADDER_CACHE_SIZE", DefaultLadderCacheSize),
		QueryTimeout:    getEnvAsDuration("QUERY_TIMEOUT", DefaultQueryTimeout),

		WorkerCount:     getEnvAsInt("WORKER_COUNT", DefaultWorkerCount),
		WorkerQueueSize: getEnvAsInt("WORKER_QUEUE_SIZE", DefaultWorkerQueueSize),
		JobTimeout:      getEnvAsDuration("JOB_TIMEOUT", DefaultJobTimeout),

		AuditRetentionDays: getEnvAsInt("AUDIT_RETENTION_DAYS", DefaultAuditRetentionDays),
		AuditCleanupEvery:  getEnvAsDuration("AUDIT_CLEANUP_INTERVAL", DefaultAuditCleanupEvery),

		EventMaxRetries: getEnvAsInt("EVENT_MAX_RETRIES", DefaultEventMaxRetries),
		EventRetryDelay: getEnvAsDuration("EVENT_RETRY_DELAY", DefaultEventRetryDelay),
		DeadLetterPath:  getEnv("DEAD_LETTER_PATH", DefaultDeadLetterPath),
	}

	port, err := strconv.Atoi(getEnv("PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return nil, fmt.Errorf(ErrMsgInvalidPort, err)
	}
	cfg.Port = port

	channels, err := parseAuditChannels(getEnv("DISCORD_AUDIT_CHANNELS", ""))
	if err != nil {
		return nil, err
	}
	cfg.DiscordAuditChannels = channels
	cfg.TrustedProxies = splitList(getEnv("TRUSTED_PROXIES", ""))

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, errors.New(ErrMsgAPIKeyMissing)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct constraints of c
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf(ErrMsgFieldValidation, fe.Field(), fe.Tag()))
	}
	return fmt.Errorf(ErrMsgInvalidConfig, strings.Join(parts, ", "))
}

// parseAuditChannels reads "guild:channel,guild:channel"
func parseAuditChannels(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		guild, channel, ok := strings.Cut(pair, ":")
		if !ok || guild == "" || channel == "" {
			return nil, fmt.Errorf(ErrMsgAuditChannels, pair)
		}
		out[guild] = channel
	}
	return out, nil
}

// splitList reads a comma separated list, dropping empty items
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns defaultValue when the variable is unset or not an integer
func getEnvAsInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvAsDuration returns defaultValue when the variable is unset or not a duration
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
