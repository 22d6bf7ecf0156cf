package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/WinLedger_Go/internal/event"
	"github.com/osse101/WinLedger_Go/internal/eventlog"
	"github.com/osse101/WinLedger_Go/internal/metrics"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus        event.Bus
	EventLogService eventlog.Service
}

// RegisterEventHandlers subscribes the metrics collector and the audit
// logger to every ledger event.
func RegisterEventHandlers(deps EventHandlerDependencies) error {
	metricsCollector := metrics.NewEventMetricsCollector()
	if err := metricsCollector.Register(deps.EventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	deps.EventLogService.Subscribe(deps.EventBus)
	slog.Info(LogMsgEventLoggerInitialized)

	return nil
}
