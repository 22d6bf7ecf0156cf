package reward

import "time"

// Engine defaults
const (
	DefaultCollapseDelay  = 2 * time.Second
	DefaultLadderCacheTTL = 10 * time.Minute
	DefaultLadderCacheLen = 1024
)

// LadderCacheVersion is bumped whenever the cached ladder layout changes
const LadderCacheVersion = "1"

// Log messages
const (
	LogMsgTransitionsDetected   = "Reward transitions detected"
	LogMsgRoleApplied           = "Reward role applied"
	LogMsgRoleApplicationFailed = "Failed to apply reward role"
	LogMsgRoleJobDropped        = "Role job queue full, applying inline"
	LogMsgCollapseScheduled     = "Hierarchy collapse scheduled"
	LogMsgCollapseRunning       = "Running hierarchy collapse"
	LogMsgCollapseSkipped       = "Hierarchy collapse skipped"
	LogMsgCollapseFailed        = "Hierarchy collapse failed"
	LogMsgLadderReloaded        = "Reward ladder reloaded after inconsistency"
	LogMsgDroppedUnknownRole    = "Dropping transition for unknown reward role"
	LogMsgLadderLoadFailed      = "Failed to load reward ladder"
	LogMsgRefreshRoles          = "Refreshing reward roles"
	LogMsgFlushingCollapses     = "Flushing pending hierarchy collapses"
	LogMsgNoRoleApplier         = "No role applier configured, skipping role change"
	LogMsgPublishFailed         = "Failed to publish event"
	LogMsgInvalidStoredRewards  = "Stored reward definitions are invalid"
	LogMsgLadderLoadRaced       = "Reward ladder changed while loading, not cached"
)

// Role change reasons written to the chat platform audit log
const (
	ReasonThresholdReached = "Reached %d %s"
	ReasonThresholdLost    = "Dropped below %d %s"
	ReasonHierarchyKeep    = "Highest %s reward"
	ReasonHierarchyDrop    = "Superseded by a higher %s reward"
	ReasonRefresh          = "Reward role refresh"
)

// Error messages
const (
	ErrMsgLoadLadderFailed = "failed to load reward ladder: %w"
	ErrMsgReadTotalsFailed = "failed to read member totals: %w"
)

// DebouncerWorkerName identifies the debouncer in shutdown logs
const DebouncerWorkerName = "collapse debouncer"
