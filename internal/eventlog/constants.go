package eventlog

// DefaultRetentionDays is how long audit entries are kept when unset
const DefaultRetentionDays = 90

// DefaultEntryLimit caps GetEntries when no limit is given
const DefaultEntryLimit = 50

// Messages for events that carry no admin message
const (
	MsgRoleFailed = "Role %s was not %s for member %s: %s"
)

// Log messages - service events
const (
	LogMsgAction          = "Audit action"
	LogMsgUndecodable     = "Audit event payload could not be decoded, skipping"
	LogMsgFailedToLog     = "Failed to write audit entry"
	LogMsgMirrorFailed    = "Failed to mirror audit entry"
	LogMsgSubscribedTypes = "Audit log subscribed"
)

// Log messages - cleanup job
const (
	LogMsgCleanupJobStarting  = "Starting audit log cleanup job"
	LogMsgCleanupJobFailed    = "Audit log cleanup failed"
	LogMsgCleanupJobCompleted = "Audit log cleanup completed"
)

// Log field keys
const (
	LogFieldType          = "type"
	LogFieldGuildID       = "guild_id"
	LogFieldActorID       = "actor_id"
	LogFieldSeverity      = "severity"
	LogFieldMessage       = "message"
	LogFieldError         = "error"
	LogFieldRetentionDays = "retentionDays"
	LogFieldDuration      = "duration"
	LogFieldDeletedCount  = "deletedCount"
)

// Error messages
const (
	ErrMsgGuildRequired    = "guild id is required for audit entries"
	ErrMsgInvalidRetention = "retention must be at least one day, got %d"
)
