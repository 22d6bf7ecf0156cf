package leaderboard

import "time"

// DefaultQueryTimeout bounds every leaderboard query when no timeout is configured
const DefaultQueryTimeout = 5 * time.Second

// MaxPageSize caps the number of entries returned per page
const MaxPageSize = 100

// Query names used in metrics and logs
const (
	QueryRank        = "rank"
	QueryLeaderboard = "leaderboard"
	QueryEntryCount  = "entry_count"
)

// Log messages
const (
	LogMsgQueryTimedOut = "Leaderboard query timed out"
	LogMsgQueryFailed   = "Leaderboard query failed"
)

// Error messages
const (
	ErrMsgGuildRequired  = "guild id is required"
	ErrMsgMemberRequired = "member id is required"
)
