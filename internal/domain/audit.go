package domain

import "time"

// Severity classifies audit entries
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityChange  Severity = "change"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// AuditEntry records an administrative or automatic action within a guild
type AuditEntry struct {
	ID        int64     `json:"id"`
	GuildID   string    `json:"guild_id"`
	ActorID   string    `json:"actor_id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}
