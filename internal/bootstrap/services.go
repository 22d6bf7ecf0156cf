package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/WinLedger_Go/internal/config"
	"github.com/osse101/WinLedger_Go/internal/discord"
	"github.com/osse101/WinLedger_Go/internal/event"
	"github.com/osse101/WinLedger_Go/internal/eventlog"
	"github.com/osse101/WinLedger_Go/internal/guild"
	"github.com/osse101/WinLedger_Go/internal/handler"
	"github.com/osse101/WinLedger_Go/internal/ingest"
	"github.com/osse101/WinLedger_Go/internal/leaderboard"
	"github.com/osse101/WinLedger_Go/internal/ledger"
	"github.com/osse101/WinLedger_Go/internal/multiplier"
	"github.com/osse101/WinLedger_Go/internal/reward"
	"github.com/osse101/WinLedger_Go/internal/scheduler"
	"github.com/osse101/WinLedger_Go/internal/server"
	"github.com/osse101/WinLedger_Go/internal/worker"
)

// Application holds every long-lived component of a running instance
type Application struct {
	Repos     *Repositories
	Bus       event.Bus
	Publisher *event.ResilientPublisher
	Pool      *worker.Pool
	Scheduler *scheduler.Scheduler
	Discord   *discord.Session

	Rewards     *reward.Engine
	Ledger      ledger.Service
	Leaderboard leaderboard.Service
	Guilds      guild.Service
	Multipliers multiplier.Service
	Audit       eventlog.Service
	Ingest      ingest.Service
}

// InitializeApplication wires the services over repos. The worker pool is
// started here; the discord session is opened when a token is configured.
func InitializeApplication(ctx context.Context, cfg *config.Config, repos *Repositories, bus event.Bus, publisher *event.ResilientPublisher) (*Application, error) {
	app := &Application{Repos: repos, Bus: bus, Publisher: publisher}

	app.Pool = worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize).WithJobTimeout(cfg.JobTimeout)
	app.Pool.Start()

	var applier reward.RoleApplier
	var mirror eventlog.Mirror
	if cfg.DiscordToken != "" {
		sess, err := discord.New(discord.Config{Token: cfg.DiscordToken, AuditChannels: cfg.DiscordAuditChannels})
		if err != nil {
			return app, fmt.Errorf("%s: %w", ErrMsgFailedDiscord, err)
		}
		if err := sess.Start(); err != nil {
			return app, fmt.Errorf("%s: %w", ErrMsgFailedDiscord, err)
		}
		app.Discord = sess
		applier = discord.NewRoleApplier(sess)
		mirror = discord.NewChannelAuditor(sess, cfg.DiscordAuditChannels)
		slog.Info(LogMsgDiscordEnabled, "audit_channels", len(cfg.DiscordAuditChannels))
	} else {
		slog.Warn(LogMsgDiscordDisabled)
	}

	app.Rewards = reward.NewEngine(repos.Guilds, repos.Counters, applier, app.Pool, publisher, reward.Config{
		CollapseDelay: cfg.CollapseDelay,
		CacheSize:     cfg.LadderCacheSize,
		CacheTTL:      cfg.LadderCacheTTL,
	})
	app.Ledger = ledger.NewService(repos.Counters, app.Rewards, publisher)
	app.Leaderboard = leaderboard.NewService(repos.Rankings, cfg.QueryTimeout)
	app.Multipliers = multiplier.NewService(repos.Multipliers, publisher)

	guilds, err := guild.NewService(repos.Guilds, app.Rewards, publisher)
	if err != nil {
		return app, fmt.Errorf("%s: %w", ErrMsgFailedGuildSvc, err)
	}
	app.Guilds = guilds

	if cfg.GuildSeedPath != "" {
		n, err := app.Guilds.Import(ctx, cfg.GuildSeedPath)
		if err != nil {
			return app, fmt.Errorf("%s: %w", ErrMsgFailedGuildSeed, err)
		}
		slog.Info(LogMsgGuildSeedImported, "path", cfg.GuildSeedPath, "guilds", n)
	}

	if cfg.ResultPublicKeyPath != "" {
		key, err := ingest.LoadPublicKey(cfg.ResultPublicKeyPath)
		if err != nil {
			return app, fmt.Errorf("%s: %w", ErrMsgFailedPublicKey, err)
		}
		app.Ingest = ingest.NewService(key, repos.Guilds, app.Multipliers, app.Ledger)
		slog.Info(LogMsgIngestEnabled)
	} else {
		slog.Warn(LogMsgIngestDisabled)
	}

	app.Audit = eventlog.NewService(repos.Audit, mirror)
	if err := RegisterEventHandlers(EventHandlerDependencies{EventBus: bus, EventLogService: app.Audit}); err != nil {
		return app, err
	}

	app.Scheduler = scheduler.New(app.Pool)
	app.Scheduler.Schedule(JobNameAuditCleanup, cfg.AuditCleanupEvery, eventlog.NewCleanupJob(app.Audit, cfg.AuditRetentionDays))
	slog.Info(LogMsgCleanupScheduled, "every", cfg.AuditCleanupEvery, "retention_days", cfg.AuditRetentionDays)

	return app, nil
}

// NewServer builds the HTTP server over the application services
func (a *Application) NewServer(cfg *config.Config) *server.Server {
	var checks []handler.ReadinessCheck
	if a.Repos.Pool != nil {
		checks = append(checks, handler.ReadinessCheck{Name: CheckNameDatabase, Pinger: a.Repos.Pool})
	}
	if a.Discord != nil {
		checks = append(checks, handler.ReadinessCheck{Name: CheckNameDiscord, Pinger: a.Discord})
	}

	return server.NewServer(server.Config{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		ServiceName:    cfg.ServiceName,
		Version:        cfg.Version,
	}, server.Services{
		Ledger:      a.Ledger,
		Leaderboard: a.Leaderboard,
		Guilds:      a.Guilds,
		Multipliers: a.Multipliers,
		Rewards:     a.Rewards,
		Audit:       a.Audit,
		Ingest:      a.Ingest,
	}, checks...)
}
