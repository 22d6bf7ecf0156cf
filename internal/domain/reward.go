package domain

// HierarchyMode controls which unlocked reward roles a member keeps
type HierarchyMode string

const (
	// HierarchyKeepAll keeps every unlocked role
	HierarchyKeepAll HierarchyMode = "all"
	// HierarchyKeepHighest keeps only the highest unlocked role per metric
	HierarchyKeepHighest HierarchyMode = "highest"
)

// Valid reports whether the mode is known
func (h HierarchyMode) Valid() bool {
	return h == HierarchyKeepAll || h == HierarchyKeepHighest
}

// RewardDefinition grants RoleID once the Metric total reaches Threshold
type RewardDefinition struct {
	RoleID    string `json:"role_id" validate:"required,max=64,printascii"`
	Metric    Metric `json:"type" validate:"required,oneof=points wins"`
	Threshold int64  `json:"count" validate:"required,min=1"`
}

// TransitionType is the direction a reward role moved
type TransitionType string

const (
	TransitionAdded   TransitionType = "Added"
	TransitionRemoved TransitionType = "Removed"
)

// Transition is a reward threshold crossed by a ledger mutation
type Transition struct {
	Type      TransitionType `json:"type"`
	RoleID    string         `json:"role_id"`
	Metric    Metric         `json:"role_type"`
	Threshold int64          `json:"role_amount"`
}

// Progress is the nearest reward a member has not reached yet for a metric
type Progress struct {
	RoleID string `json:"role"`
	Metric Metric `json:"metric"`
	Has    int64  `json:"has"`
	Needs  int64  `json:"needs"`
}

// RoleOpKind is a role change on the chat platform
type RoleOpKind string

const (
	RoleGrant  RoleOpKind = "grant"
	RoleRevoke RoleOpKind = "revoke"
)

// RoleOp is a single role change to apply to a member
type RoleOp struct {
	Kind   RoleOpKind `json:"kind"`
	RoleID string     `json:"role_id"`
	Reason string     `json:"reason"`
}
