package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/logger"
)

// SafeRollback rolls back a transaction and logs any error that isn't ErrTxClosed
func SafeRollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

// metricColumn maps a metric to its column name. Column names cannot be bound
// as parameters, so only these two literals ever reach the SQL text.
func metricColumn(m domain.Metric) (string, error) {
	switch m {
	case domain.MetricPoints:
		return "points", nil
	case domain.MetricWins:
		return "wins", nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidMetric, m)
	}
}

// storageErr wraps err as a domain.StorageError unless it is already a domain
// sentinel the caller should see directly
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidMetric) || domain.IsStorageError(err) {
		return err
	}
	return domain.NewStorageError(op, err)
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// ptrTime converts a pgtype.Timestamptz to *time.Time.
// Returns nil if the timestamp is not valid.
func ptrTime(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

// timestamptz converts an optional time to its nullable column value
func timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// dateArg converts a day to the DATE parameter, dropping any clock component
func dateArg(day time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DayKey(day), Valid: true}
}
