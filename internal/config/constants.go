package config

import "time"

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Defaults
const (
	DefaultPort               = 8080
	DefaultDBMaxConns         = 20
	DefaultDBMaxConnIdleTime  = 5 * time.Minute
	DefaultDBMaxConnLifetime  = 30 * time.Minute
	DefaultCollapseDelay      = 2 * time.Second
	DefaultLadderCacheTTL     = 10 * time.Minute
	DefaultLadderCacheSize    = 1024
	DefaultQueryTimeout       = 5 * time.Second
	DefaultWorkerCount        = 4
	DefaultWorkerQueueSize    = 256
	DefaultJobTimeout         = 30 * time.Second
	DefaultAuditRetentionDays = 90
	DefaultAuditCleanupEvery  = 24 * time.Hour
	DefaultEventMaxRetries    = 3
	DefaultEventRetryDelay    = 500 * time.Millisecond
	DefaultDeadLetterPath     = "logs/deadletter.jsonl"
)

// Error messages
const (
	ErrMsgInvalidPort     = "invalid PORT value: %w"
	ErrMsgAPIKeyMissing   = "API_KEY environment variable must be set for security"
	ErrMsgInvalidConfig   = "invalid configuration: %s"
	ErrMsgAuditChannels   = "invalid DISCORD_AUDIT_CHANNELS entry %q, expected guild:channel"
	ErrMsgFieldValidation = "%s failed %s validation"
)
