package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/WinLedger_Go/internal/config"
	"github.com/osse101/WinLedger_Go/internal/database"
	"github.com/osse101/WinLedger_Go/internal/database/memory"
	"github.com/osse101/WinLedger_Go/internal/database/postgres"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

// Repositories holds the storage implementations used by the services.
// Pool is nil for the in-memory backend.
type Repositories struct {
	Counters    repository.Counters
	Rankings    repository.Rankings
	Guilds      repository.GuildConfigs
	Multipliers repository.Multipliers
	Audit       repository.AuditLog
	Pool        database.Pool
}

// InitializeRepositories connects the configured storage backend. The
// postgres backend is migrated before any repository is handed out.
func InitializeRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	slog.Info(LogMsgStorageSelected, "storage", cfg.Storage)

	switch cfg.Storage {
	case config.StorageMemory:
		slog.Warn(LogMsgMemoryStorageNotes)
		store := memory.NewStore()
		return &Repositories{
			Counters:    store,
			Rankings:    store,
			Guilds:      store,
			Multipliers: store,
			Audit:       store,
		}, nil

	case config.StoragePostgres:
		pool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectDB, err)
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedMigrate, err)
		}
		guilds := postgres.NewGuildRepository(pool)
		return &Repositories{
			Counters:    postgres.NewCounterRepository(pool),
			Rankings:    postgres.NewRankingRepository(pool),
			Guilds:      guilds,
			Multipliers: guilds,
			Audit:       postgres.NewAuditRepository(pool),
			Pool:        pool,
		}, nil

	default:
		return nil, fmt.Errorf(ErrMsgUnknownStorage, cfg.Storage)
	}
}

// Close releases the database pool, if any
func (r *Repositories) Close() {
	if r.Pool != nil {
		r.Pool.Close()
	}
}
