package domain

import (
	"errors"
	"fmt"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Ledger errors
	ErrMsgInvalidDelta  = "invalid delta"
	ErrMsgInvalidMetric = "invalid metric"
	ErrMsgInvalidWindow = "invalid window"

	// Guild errors
	ErrMsgGuildNotFound           = "guild not configured"
	ErrMsgInvalidRewardDefinition = "invalid reward definition"
	ErrMsgInvalidHierarchyMode    = "invalid hierarchy mode"
	ErrMsgHierarchyInconsistency  = "reward role not found in hierarchy"
	ErrMsgRoleApplicationFailed   = "failed to apply role"
	ErrMsgAutoPointsDisabled      = "automatic points are disabled for this guild"
	ErrMsgInvalidMultiplier       = "multiplier must be between 1 and 5"
	ErrMsgMultiplierAlreadyActive = "a multiplier is already active"
	ErrMsgNoActiveMultiplier      = "no multiplier is active"
	ErrMsgQueryTimeout            = "query timed out"
	ErrMsgStorage                 = "storage error"
	ErrMsgInvalidInput            = "invalid input"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// ErrInvalidDelta is returned before any I/O when a ledger delta is zero,
	// non-finite, or otherwise unusable.
	ErrInvalidDelta  = errors.New(ErrMsgInvalidDelta)
	ErrInvalidMetric = errors.New(ErrMsgInvalidMetric)
	ErrInvalidWindow = errors.New(ErrMsgInvalidWindow)

	ErrGuildNotFound           = errors.New(ErrMsgGuildNotFound)
	ErrInvalidRewardDefinition = errors.New(ErrMsgInvalidRewardDefinition)
	ErrInvalidHierarchyMode    = errors.New(ErrMsgInvalidHierarchyMode)
	ErrAutoPointsDisabled      = errors.New(ErrMsgAutoPointsDisabled)

	ErrInvalidMultiplier       = errors.New(ErrMsgInvalidMultiplier)
	ErrMultiplierAlreadyActive = errors.New(ErrMsgMultiplierAlreadyActive)
	ErrNoActiveMultiplier      = errors.New(ErrMsgNoActiveMultiplier)

	ErrQueryTimeout = errors.New(ErrMsgQueryTimeout)
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)

// StorageError wraps a failure of the underlying store. It is never retried
// by the store itself.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMsgStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a StorageError for operation op.
// Returns nil when err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err carries a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// RoleApplicationError is a soft failure: the counter mutation already
// succeeded, only the chat platform rejected the role change.
type RoleApplicationError struct {
	GuildID  string
	MemberID string
	RoleID   string
	Action   TransitionType
	Err      error
}

func (e *RoleApplicationError) Error() string {
	return fmt.Sprintf("%s: %s role %s for member %s in guild %s: %v",
		ErrMsgRoleApplicationFailed, e.Action, e.RoleID, e.MemberID, e.GuildID, e.Err)
}

func (e *RoleApplicationError) Unwrap() error {
	return e.Err
}

// HierarchyInconsistencyError means a transition references a role that the
// cached ladder of the guild does not know. Reloading the ladder resolves it.
type HierarchyInconsistencyError struct {
	GuildID string
	RoleID  string
}

func (e *HierarchyInconsistencyError) Error() string {
	return fmt.Sprintf("%s: role %s in guild %s", ErrMsgHierarchyInconsistency, e.RoleID, e.GuildID)
}
