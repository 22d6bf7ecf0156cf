package repository

import (
	"context"
	"time"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

// Tx defines the counter operations available inside a single transaction
type Tx interface {
	UpsertCumulative(ctx context.Context, guildID, memberID string, delta domain.Delta) (domain.Counter, error)
	UpsertDaily(ctx context.Context, guildID, memberID string, day time.Time, delta domain.Delta) (domain.Counter, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
