package discord

// Embed colors by audit severity
const (
	ColorInfo    = 0x5865f2 // Blurple
	ColorChange  = 0x3498db // Blue
	ColorWarning = 0xf39c12 // Orange
	ColorDanger  = 0xe74c3c // Red
)

// FooterAudit is shown under mirrored audit entries
const FooterAudit = "WinLedger audit"

// Log messages
const (
	LogMsgSessionReady   = "Discord session ready"
	LogMsgSessionClosed  = "Discord session closed"
	LogMsgRoleGranted    = "Role granted"
	LogMsgRoleRevoked    = "Role revoked"
	LogMsgNoAuditChannel = "No audit channel configured for guild"
)

// Error messages
const (
	ErrMsgCreateSession = "error creating Discord session: %w"
	ErrMsgOpenSession   = "error opening connection: %w"
	ErrMsgGrantRole     = "failed to grant role %s: %w"
	ErrMsgRevokeRole    = "failed to revoke role %s: %w"
	ErrMsgSendAudit     = "failed to send audit entry to channel %s: %w"
	ErrMsgNotConnected  = "discord session is not connected"
)
