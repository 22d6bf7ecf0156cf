package guild

// SchemaName identifies the embedded guild seed schema
const SchemaName = "guilds.schema.json"

// Log messages
const (
	LogMsgRewardsUpdated    = "Guild rewards updated"
	LogMsgHierarchyUpdated  = "Guild hierarchy mode updated"
	LogMsgAutoPointsUpdated = "Guild automatic points updated"
	LogMsgGuildRemoved      = "Guild removed"
	LogMsgGuildsImported    = "Guild configurations imported"
	LogMsgPublishFailed     = "Failed to publish guild event"
)

// Audit messages
const (
	MsgRewardsReplaced   = "Reward ladder replaced with %d roles"
	MsgRewardAdded       = "Added reward role %s at %d %s"
	MsgRewardRemoved     = "Removed reward role %s"
	MsgHierarchyChanged  = "Hierarchy mode set to %s"
	MsgAutoPointsEnabled = "Automatic points enabled"
	MsgAutoPointsOff     = "Automatic points disabled"
	MsgGuildRemoved      = "Removed all guild data"
	MsgImported          = "Configuration imported from %s"
)

// Error messages
const (
	ErrMsgDuplicateRole      = "role %s is defined more than once"
	ErrMsgDuplicateThreshold = "more than one %s reward at %d"
	ErrMsgRoleNotConfigured  = "role %s is not a reward role"
	ErrMsgFieldInvalid       = "%s failed %s validation"
	ErrMsgReadSeedFailed     = "failed to read guild seed file: %w"
	ErrMsgParseSeedFailed    = "failed to parse guild seed file: %w"
	ErrMsgSeedSchemaFailed   = "guild seed file %s is invalid: %w"
	ErrMsgLoadConfigFailed   = "failed to load guild config: %w"
	ErrMsgGuildRequired      = "guild id is required"
)
