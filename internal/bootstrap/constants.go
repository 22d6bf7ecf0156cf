package bootstrap

// DirPermission is used for the log and dead-letter directories
const DirPermission = 0755

// Session log files
const (
	// LogFileTimestampFormat is the timestamp format for log filenames (YYYY-MM-DD_HH-MM-SS)
	LogFileTimestampFormat = "2006-01-02_15-04-05"
	LogFileNamePattern     = "session_%s.log"
	LogFileExtension       = ".log"

	// LogFileRetentionCount is the number of older session logs kept at startup
	LogFileRetentionCount = 9

	// A session file rotates at LogFileMaxSizeMB, keeping LogFileMaxBackups parts
	LogFileMaxSizeMB  = 50
	LogFileMaxBackups = 3
)

// Log messages for logger initialization
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingWinLedger   = "Starting WinLedger"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedCreateLogsDir = "failed to create logs directory"
	LogMsgFailedOpenLogFile   = "failed to open log file"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file"
)

// Log messages for event system initialization
const (
	LogMsgEventSystemInitialized         = "Event system initialized"
	LogMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	LogMsgDeadLetterUnreadable           = "Dead-letter file could not be read"
	LogMsgDeadLettersPending             = "Dead-lettered events from earlier runs"
	LogMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
)

// Storage messages
const (
	LogMsgStorageSelected    = "Storage selected"
	ErrMsgFailedConnectDB    = "failed to connect to database"
	ErrMsgFailedMigrate      = "failed to apply migrations"
	ErrMsgUnknownStorage     = "unknown storage backend %q"
	LogMsgMemoryStorageNotes = "Counters are kept in memory and lost on restart"
)

// Event handler registration
const (
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgEventLoggerInitialized     = "Event logger initialized"
	ErrMsgFailedRegisterMetrics      = "failed to register metrics collector"
)

// Service wiring
const (
	LogMsgDiscordEnabled    = "Discord session enabled"
	LogMsgDiscordDisabled   = "Discord token not set, role changes are recorded but not applied"
	LogMsgIngestEnabled     = "Result ingestion enabled"
	LogMsgIngestDisabled    = "Result public key not set, result ingestion disabled"
	LogMsgGuildSeedImported = "Guild seed imported"
	LogMsgCleanupScheduled  = "Audit cleanup scheduled"
	ErrMsgFailedDiscord     = "failed to start discord session"
	ErrMsgFailedGuildSvc    = "failed to create guild service"
	ErrMsgFailedPublicKey   = "failed to load result public key"
	ErrMsgFailedGuildSeed   = "failed to import guild seed"

	JobNameAuditCleanup = "audit-cleanup"
	CheckNameDatabase   = "database"
	CheckNameDiscord    = "discord"
)

// Shutdown messages
const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
	LogMsgRewardEngineFailed         = "Reward engine shutdown failed"
	LogMsgDiscordStopFailed          = "Discord session shutdown failed"
)
