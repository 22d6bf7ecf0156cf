package ledger

// Operation names used in logs, metrics and events
const (
	OpRegisterWin  = "register_win"
	OpRemoveWin    = "remove_win"
	OpModifyPoints = "modify_points"
	OpModifyWins   = "modify_wins"
	OpForgetMember = "forget_member"
)

// Log messages
const (
	LogMsgMutationApplied   = "Ledger mutation applied"
	LogMsgMutationRejected  = "Ledger mutation rejected"
	LogMsgMutationFailed    = "Ledger mutation failed"
	LogMsgRewardCheckFailed = "Reward check failed after ledger mutation"
	LogMsgMemberForgotten   = "Member data removed"
	LogMsgPublishFailed     = "Failed to publish ledger event"
)

// Error messages
const (
	ErrMsgGuildRequired     = "guild id is required"
	ErrMsgMemberRequired    = "member id is required"
	ErrMsgWinPointsPositive = "win points must be positive: %d"
	ErrMsgZeroDelta         = "delta must not be zero"
	ErrMsgNotFinite         = "delta is not a finite number: %v"
	ErrMsgOutOfRange        = "delta out of range: %v"
	ErrMsgHistoryAllTime    = "history requires a bounded window"
)

// MsgMemberForgotten is the audit message written when a member's data is removed
const MsgMemberForgotten = "Removed all ledger data of member %s"
