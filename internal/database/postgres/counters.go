package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

const upsertCumulativeQuery = `
	INSERT INTO cumulative_counters (guild_id, member_id, points, wins, updated_at)
	VALUES ($1, $2, GREATEST(0, $3::BIGINT), GREATEST(0, $4::BIGINT), NOW())
	ON CONFLICT (guild_id, member_id) DO UPDATE SET
		points = GREATEST(0, cumulative_counters.points + $3::BIGINT),
		wins = GREATEST(0, cumulative_counters.wins + $4::BIGINT),
		updated_at = NOW()
	RETURNING points, wins
`

const upsertDailyQuery = `
	INSERT INTO daily_counters (guild_id, member_id, day, points, wins)
	VALUES ($1, $2, $3, GREATEST(0, $4::BIGINT), GREATEST(0, $5::BIGINT))
	ON CONFLICT (guild_id, member_id, day) DO UPDATE SET
		points = GREATEST(0, daily_counters.points + $4::BIGINT),
		wins = GREATEST(0, daily_counters.wins + $5::BIGINT)
	RETURNING points, wins
`

// querier is satisfied by both the pool and a transaction
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CounterRepository implements repository.Counters for PostgreSQL
type CounterRepository struct {
	db *pgxpool.Pool
}

// NewCounterRepository creates a new CounterRepository
func NewCounterRepository(db *pgxpool.Pool) *CounterRepository {
	return &CounterRepository{db: db}
}

var _ repository.Counters = (*CounterRepository)(nil)

// GetCumulative returns the all-time totals of a member, {0,0} if never seen
func (r *CounterRepository) GetCumulative(ctx context.Context, guildID, memberID string) (domain.Counter, error) {
	var c domain.Counter
	err := r.db.QueryRow(ctx, `
		SELECT points, wins FROM cumulative_counters
		WHERE guild_id = $1 AND member_id = $2
	`, guildID, memberID).Scan(&c.Points, &c.Wins)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Counter{}, nil
	}
	if err != nil {
		return domain.Counter{}, storageErr(OpGetCumulative, err)
	}
	return c, nil
}

func upsertCumulative(ctx context.Context, q querier, guildID, memberID string, delta domain.Delta) (domain.Counter, error) {
	var c domain.Counter
	err := q.QueryRow(ctx, upsertCumulativeQuery, guildID, memberID, delta.Points, delta.Wins).Scan(&c.Points, &c.Wins)
	if err != nil {
		return domain.Counter{}, storageErr(OpUpsertCumulative, err)
	}
	return c, nil
}

func upsertDaily(ctx context.Context, q querier, guildID, memberID string, day time.Time, delta domain.Delta) (domain.Counter, error) {
	var c domain.Counter
	err := q.QueryRow(ctx, upsertDailyQuery, guildID, memberID, dateArg(day), delta.Points, delta.Wins).Scan(&c.Points, &c.Wins)
	if err != nil {
		return domain.Counter{}, storageErr(OpUpsertDaily, err)
	}
	return c, nil
}

// UpsertCumulative clamp-adds delta to the cumulative row and returns the new totals
func (r *CounterRepository) UpsertCumulative(ctx context.Context, guildID, memberID string, delta domain.Delta) (domain.Counter, error) {
	return upsertCumulative(ctx, r.db, guildID, memberID, delta)
}

// UpsertDaily clamp-adds delta to the row of the given day and returns its new values
func (r *CounterRepository) UpsertDaily(ctx context.Context, guildID, memberID string, day time.Time, delta domain.Delta) (domain.Counter, error) {
	return upsertDaily(ctx, r.db, guildID, memberID, day, delta)
}

// BeginTx starts a transaction exposing the counter upserts
func (r *CounterRepository) BeginTx(ctx context.Context) (repository.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, storageErr(OpApplyDelta, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err))
	}
	return &counterTx{tx: tx}, nil
}

// ApplyDelta updates the cumulative row then the daily row in one transaction.
// ON CONFLICT takes the row lock, so concurrent deltas on the same key serialize
// and each clamp sees the committed value.
func (r *CounterRepository) ApplyDelta(ctx context.Context, guildID, memberID string, day time.Time, delta domain.Delta) (domain.Counter, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Counter{}, storageErr(OpApplyDelta, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err))
	}
	defer SafeRollback(ctx, tx)

	after, err := upsertCumulative(ctx, tx, guildID, memberID, delta)
	if err != nil {
		return domain.Counter{}, err
	}
	if _, err := upsertDaily(ctx, tx, guildID, memberID, day, delta); err != nil {
		return domain.Counter{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Counter{}, storageErr(OpApplyDelta, fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err))
	}
	return after, nil
}

// GetDailyAggregate sums the daily rows of a member with day >= since
func (r *CounterRepository) GetDailyAggregate(ctx context.Context, guildID, memberID string, since time.Time) (domain.Counter, error) {
	var c domain.Counter
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0)::BIGINT, COALESCE(SUM(wins), 0)::BIGINT
		FROM daily_counters
		WHERE guild_id = $1 AND member_id = $2 AND day >= $3
	`, guildID, memberID, dateArg(since)).Scan(&c.Points, &c.Wins)
	if err != nil {
		return domain.Counter{}, storageErr(OpDailyAggregate, err)
	}
	return c, nil
}

// GetDailyHistory returns the stored daily rows with day >= since, oldest first.
// Days without activity have no row.
func (r *CounterRepository) GetDailyHistory(ctx context.Context, guildID, memberID string, since time.Time) ([]domain.DailyCounter, error) {
	rows, err := r.db.Query(ctx, `
		SELECT day, points, wins FROM daily_counters
		WHERE guild_id = $1 AND member_id = $2 AND day >= $3
		ORDER BY day
	`, guildID, memberID, dateArg(since))
	if err != nil {
		return nil, storageErr(OpDailyHistory, err)
	}
	defer rows.Close()

	var history []domain.DailyCounter
	for rows.Next() {
		var dc domain.DailyCounter
		if err := rows.Scan(&dc.Day, &dc.Points, &dc.Wins); err != nil {
			return nil, storageErr(OpDailyHistory, err)
		}
		dc.Day = domain.DayKey(dc.Day)
		history = append(history, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(OpDailyHistory, err)
	}
	return history, nil
}

// GetGuildTotals sums the cumulative counters of every member in a guild
func (r *CounterRepository) GetGuildTotals(ctx context.Context, guildID string) (domain.Counter, error) {
	var c domain.Counter
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0)::BIGINT, COALESCE(SUM(wins), 0)::BIGINT
		FROM cumulative_counters WHERE guild_id = $1
	`, guildID).Scan(&c.Points, &c.Wins)
	if err != nil {
		return domain.Counter{}, storageErr(OpGuildTotals, err)
	}
	return c, nil
}

// DeleteMember removes every counter row of a member. Deleting nothing is not an error.
func (r *CounterRepository) DeleteMember(ctx context.Context, guildID, memberID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storageErr(OpDeleteMember, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err))
	}
	defer SafeRollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM cumulative_counters WHERE guild_id = $1 AND member_id = $2`, guildID, memberID); err != nil {
		return storageErr(OpDeleteMember, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM daily_counters WHERE guild_id = $1 AND member_id = $2`, guildID, memberID); err != nil {
		return storageErr(OpDeleteMember, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr(OpDeleteMember, fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err))
	}
	return nil
}

// DeleteGuild removes every counter row of a guild
func (r *CounterRepository) DeleteGuild(ctx context.Context, guildID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return storageErr(OpDeleteGuild, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err))
	}
	defer SafeRollback(ctx, tx)

	if err := deleteGuildCounters(ctx, tx, guildID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr(OpDeleteGuild, fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err))
	}
	return nil
}

func deleteGuildCounters(ctx context.Context, tx pgx.Tx, guildID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cumulative_counters WHERE guild_id = $1`, guildID); err != nil {
		return storageErr(OpDeleteGuild, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM daily_counters WHERE guild_id = $1`, guildID); err != nil {
		return storageErr(OpDeleteGuild, err)
	}
	return nil
}

// counterTx implements repository.Tx over a pgx transaction
type counterTx struct {
	tx pgx.Tx
}

func (t *counterTx) UpsertCumulative(ctx context.Context, guildID, memberID string, delta domain.Delta) (domain.Counter, error) {
	return upsertCumulative(ctx, t.tx, guildID, memberID, delta)
}

func (t *counterTx) UpsertDaily(ctx context.Context, guildID, memberID string, day time.Time, delta domain.Delta) (domain.Counter, error) {
	return upsertDaily(ctx, t.tx, guildID, memberID, day, delta)
}

func (t *counterTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *counterTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
