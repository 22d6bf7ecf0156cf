package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/osse101/WinLedger_Go/internal/config"
	"github.com/osse101/WinLedger_Go/internal/event"
)

// InitializeEventSystem creates the in-process bus and the resilient publisher
// services publish through. Events that exhaust their retries are appended to
// the dead-letter file.
func InitializeEventSystem(cfg *config.Config) (event.Bus, *event.ResilientPublisher, error) {
	eventBus := event.NewMemoryBus()

	if err := os.MkdirAll(filepath.Dir(cfg.DeadLetterPath), DirPermission); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", LogMsgFailedCreateDeadLetterDir, err)
	}

	if pending, err := event.ReadDeadLetters(cfg.DeadLetterPath); err != nil {
		slog.Warn(LogMsgDeadLetterUnreadable, "path", cfg.DeadLetterPath, "error", err)
	} else if len(pending) > 0 {
		slog.Warn(LogMsgDeadLettersPending, "path", cfg.DeadLetterPath, "count", len(pending))
	}

	publisher, err := event.NewResilientPublisher(eventBus, cfg.EventMaxRetries, cfg.EventRetryDelay, cfg.DeadLetterPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", LogMsgFailedCreateResilientPublisher, err)
	}

	slog.Info(LogMsgEventSystemInitialized,
		"max_retries", cfg.EventMaxRetries,
		"retry_delay", cfg.EventRetryDelay,
		"deadletter_path", cfg.DeadLetterPath)

	return eventBus, publisher, nil
}
