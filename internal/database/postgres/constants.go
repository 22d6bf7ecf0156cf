package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
	// PgErrorCodeCheckViolation is raised when a counter would go negative despite clamping
	PgErrorCodeCheckViolation = "23514"
)

// Storage operation names carried by domain.StorageError
const (
	OpGetCumulative     = "get cumulative"
	OpUpsertCumulative  = "upsert cumulative"
	OpUpsertDaily       = "upsert daily"
	OpApplyDelta        = "apply delta"
	OpDailyAggregate    = "daily aggregate"
	OpDailyHistory      = "daily history"
	OpGuildTotals       = "guild totals"
	OpDeleteMember      = "delete member"
	OpDeleteGuild       = "delete guild"
	OpCountGreater      = "count greater"
	OpLeaderboard       = "leaderboard"
	OpCountEntries      = "count entries"
	OpGetGuildConfig    = "get guild config"
	OpUpsertGuildConfig = "upsert guild config"
	OpSetRewards        = "set rewards"
	OpSetHierarchyMode  = "set hierarchy mode"
	OpSetAutoPoints     = "set auto points"
	OpDeleteGuildConfig = "delete guild config"
	OpGetMultiplier     = "get multiplier"
	OpSetMultiplier     = "set multiplier"
	OpSetExpiry         = "set multiplier expiry"
	OpClearMultiplier   = "clear multiplier"
	OpInsertAudit       = "insert audit entry"
	OpGetAudit          = "get audit entries"
	OpDeleteAudit       = "delete audit entries"
)

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
	ErrMsgFailedToMarshalRewards    = "failed to marshal rewards"
	ErrMsgFailedToUnmarshalRewards  = "failed to unmarshal rewards"
)
