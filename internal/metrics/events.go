package metrics

import (
	"context"

	"github.com/osse101/WinLedger_Go/internal/event"
	"github.com/osse101/WinLedger_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to every event type the core publishes
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.LedgerMutated,
		event.MemberForgotten,
		event.RewardTransition,
		event.RoleApplicationFailed,
		event.HierarchyCollapsed,
		event.MultiplierSet,
		event.MultiplierCleared,
		event.GuildConfigChanged,
		event.GuildRemoved,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.LedgerMutated:
		p, err := event.DecodePayload[event.LedgerMutatedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgEventPayloadUndecodable, "type", evt.Type, "error", err)
			return nil
		}
		if p.Delta.Points > 0 {
			PointsAwarded.Add(float64(p.Delta.Points))
		} else if p.Delta.Points < 0 {
			PointsRemoved.Add(float64(-p.Delta.Points))
		}

	case event.RewardTransition:
		p, err := event.DecodePayload[event.RewardTransitionPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgEventPayloadUndecodable, "type", evt.Type, "error", err)
			return nil
		}
		RewardTransitions.WithLabelValues(string(p.Transition.Type), string(p.Transition.Metric)).Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
