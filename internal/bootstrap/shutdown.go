package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/WinLedger_Go/internal/server"
)

// GracefulShutdown stops the application in dependency order:
// 1. HTTP server (stop accepting new requests)
// 2. Scheduler, so no new background jobs are queued
// 3. Reward engine, flushing pending collapses onto the worker pool
// 4. Worker pool, draining queued role changes
// 5. Discord session
// 6. Event publisher (flush pending events)
// 7. Database pool
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, srv *server.Server, app *Application) {
	slog.Info(LogMsgShuttingDownServer)
	if srv != nil {
		if err := srv.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if app.Scheduler != nil {
		app.Scheduler.Stop()
	}

	if app.Rewards != nil {
		if err := app.Rewards.Shutdown(ctx); err != nil {
			slog.Error(LogMsgRewardEngineFailed, "error", err)
		}
	}

	if app.Pool != nil {
		app.Pool.Stop()
	}

	if app.Discord != nil {
		if err := app.Discord.Stop(); err != nil {
			slog.Error(LogMsgDiscordStopFailed, "error", err)
		}
	}

	if app.Publisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := app.Publisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	if app.Repos != nil {
		app.Repos.Close()
	}

	slog.Info(LogMsgServerStopped)
}
