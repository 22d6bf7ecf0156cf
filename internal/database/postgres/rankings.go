package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

// RankingRepository implements repository.Rankings for PostgreSQL.
// A zero since reads cumulative_counters, otherwise daily rows are summed.
type RankingRepository struct {
	db *pgxpool.Pool
}

// NewRankingRepository creates a new RankingRepository
func NewRankingRepository(db *pgxpool.Pool) *RankingRepository {
	return &RankingRepository{db: db}
}

var _ repository.Rankings = (*RankingRepository)(nil)

// totalsSource returns a subquery yielding (member_id, value) rows for the guild in $1.
// Windowed sources expect the first included day in $2.
func totalsSource(col string, since time.Time) string {
	if since.IsZero() {
		return fmt.Sprintf(`SELECT member_id, %s AS value FROM cumulative_counters WHERE guild_id = $1`, col)
	}
	return fmt.Sprintf(`
		SELECT member_id, SUM(%s)::BIGINT AS value FROM daily_counters
		WHERE guild_id = $1 AND day >= $2
		GROUP BY member_id`, col)
}

func baseArgs(guildID string, since time.Time) []any {
	if since.IsZero() {
		return []any{guildID}
	}
	return []any{guildID, dateArg(since)}
}

// CountGreater counts members whose value is strictly greater than the member's.
// A member without rows compares as zero.
func (r *RankingRepository) CountGreater(ctx context.Context, guildID, memberID string, metric domain.Metric, since time.Time) (int, error) {
	col, err := metricColumn(metric)
	if err != nil {
		return 0, err
	}

	args := baseArgs(guildID, since)
	memberParam := len(args) + 1
	args = append(args, memberID)

	query := fmt.Sprintf(`
		WITH totals AS (%s)
		SELECT COUNT(*) FROM totals
		WHERE value > COALESCE((SELECT value FROM totals WHERE member_id = $%d), 0)
	`, totalsSource(col, since), memberParam)

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, storageErr(OpCountGreater, err)
	}
	return count, nil
}

// GetLeaderboard returns one page ordered by value descending then member id.
// Each entry's rank is 1 + the number of members with a strictly greater value.
func (r *RankingRepository) GetLeaderboard(ctx context.Context, guildID string, metric domain.Metric, since time.Time, limit, offset int) ([]domain.LeaderboardEntry, error) {
	col, err := metricColumn(metric)
	if err != nil {
		return nil, err
	}

	args := baseArgs(guildID, since)
	limitParam := len(args) + 1
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		WITH totals AS (%s)
		SELECT member_id, value, RANK() OVER (ORDER BY value DESC) AS rank
		FROM totals
		ORDER BY value DESC, member_id ASC
		LIMIT $%d OFFSET $%d
	`, totalsSource(col, since), limitParam, limitParam+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(OpLeaderboard, err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e domain.LeaderboardEntry
		var rank int64
		if err := rows.Scan(&e.MemberID, &e.Value, &rank); err != nil {
			return nil, storageErr(OpLeaderboard, err)
		}
		e.Rank = int(rank)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(OpLeaderboard, err)
	}
	return entries, nil
}

// CountEntries counts the distinct members with a row in the window
func (r *RankingRepository) CountEntries(ctx context.Context, guildID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM cumulative_counters WHERE guild_id = $1`
	if !since.IsZero() {
		query = `SELECT COUNT(DISTINCT member_id) FROM daily_counters WHERE guild_id = $1 AND day >= $2`
	}

	var count int
	if err := r.db.QueryRow(ctx, query, baseArgs(guildID, since)...).Scan(&count); err != nil {
		return 0, storageErr(OpCountEntries, err)
	}
	return count, nil
}
