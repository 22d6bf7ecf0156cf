package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata map[string]interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata,omitempty"`
}

// Event types published by the ledger core
const (
	LedgerMutated         Type = "ledger.mutated"
	MemberForgotten       Type = "ledger.member_forgotten"
	RewardTransition      Type = "reward.transition"
	RoleApplicationFailed Type = "reward.role_failed"
	HierarchyCollapsed    Type = "reward.hierarchy_collapsed"
	MultiplierSet         Type = "multiplier.set"
	MultiplierCleared     Type = "multiplier.cleared"
	GuildConfigChanged    Type = "guild.config_changed"
	GuildRemoved          Type = "guild.removed"
)

// LedgerMutatedPayloadV1 describes one applied ledger operation
type LedgerMutatedPayloadV1 struct {
	GuildID   string         `json:"guild_id"`
	MemberID  string         `json:"member_id"`
	Operation string         `json:"operation"`
	Delta     domain.Delta   `json:"delta"`
	Before    domain.Counter `json:"before"`
	After     domain.Counter `json:"after"`
	Timestamp int64          `json:"timestamp"`
}

// RewardTransitionPayloadV1 is a reward threshold crossed by a member
type RewardTransitionPayloadV1 struct {
	GuildID    string            `json:"guild_id"`
	MemberID   string            `json:"member_id"`
	Transition domain.Transition `json:"transition"`
}

// RoleApplicationFailedPayloadV1 reports a role change the chat platform rejected
type RoleApplicationFailedPayloadV1 struct {
	GuildID  string `json:"guild_id"`
	MemberID string `json:"member_id"`
	RoleID   string `json:"role_id"`
	Action   string `json:"action"`
	Error    string `json:"error"`
}

// HierarchyCollapsedPayloadV1 lists the role changes of one collapse pass
type HierarchyCollapsedPayloadV1 struct {
	GuildID  string          `json:"guild_id"`
	MemberID string          `json:"member_id"`
	Ops      []domain.RoleOp `json:"ops"`
}

// AdminActionPayloadV1 is an administrative change to a guild
type AdminActionPayloadV1 struct {
	GuildID string `json:"guild_id"`
	ActorID string `json:"actor_id,omitempty"`
	Message string `json:"message"`
}

// NewLedgerMutatedEvent creates a ledger mutation event
func NewLedgerMutatedEvent(guildID, memberID, op string, delta domain.Delta, before, after domain.Counter) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LedgerMutated,
		Payload: LedgerMutatedPayloadV1{
			GuildID:   guildID,
			MemberID:  memberID,
			Operation: op,
			Delta:     delta,
			Before:    before,
			After:     after,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewRewardTransitionEvent creates a reward transition event
func NewRewardTransitionEvent(guildID, memberID string, t domain.Transition) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RewardTransition,
		Payload: RewardTransitionPayloadV1{
			GuildID:    guildID,
			MemberID:   memberID,
			Transition: t,
		},
	}
}

// NewRoleApplicationFailedEvent creates an event from a failed role change
func NewRoleApplicationFailedEvent(roleErr *domain.RoleApplicationError) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RoleApplicationFailed,
		Payload: RoleApplicationFailedPayloadV1{
			GuildID:  roleErr.GuildID,
			MemberID: roleErr.MemberID,
			RoleID:   roleErr.RoleID,
			Action:   string(roleErr.Action),
			Error:    roleErr.Err.Error(),
		},
	}
}

// NewHierarchyCollapsedEvent creates an event for a completed collapse pass
func NewHierarchyCollapsedEvent(guildID, memberID string, ops []domain.RoleOp) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    HierarchyCollapsed,
		Payload: HierarchyCollapsedPayloadV1{
			GuildID:  guildID,
			MemberID: memberID,
			Ops:      ops,
		},
	}
}

// NewAdminActionEvent creates an administrative event of the given type
func NewAdminActionEvent(eventType Type, guildID, actorID, message string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: AdminActionPayloadV1{
			GuildID: guildID,
			ActorID: actorID,
			Message: message,
		},
	}
}

// DecodePayload decodes an event payload into T via type assertion then JSON fallback.
// In-process buses deliver the struct itself; dead-letter replays deliver maps.
func DecodePayload[T any](input interface{}) (T, error) {
	if v, ok := input.(T); ok {
		return v, nil
	}
	var result T
	data, err := json.Marshal(input)
	if err != nil {
		return result, err
	}
	return result, json.Unmarshal(data, &result)
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus delivers events to subscribers in the publishing goroutine
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[Type][]Handler)}
}

// Publish calls every handler of evt.Type in subscription order. A failing
// handler does not stop the rest; their errors are joined.
func (b *MemoryBus) Publish(ctx context.Context, evt Event) error {
	b.mu.RLock()
	subs := b.handlers[evt.Type]
	b.mu.RUnlock()

	var errs []error
	for _, h := range subs {
		if err := h(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf(ErrMsgHandlersFailed, len(errs), evt.Type, errors.Join(errs...))
}

func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
}

// Publisher is the narrow publishing side of a Bus
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards every event
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(context.Context, Event) error { return nil }
