package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

// GetMultiplier returns the stored multiplier without checking expiry.
// Unknown guilds and guilds without a multiplier both yield nil.
func (r *GuildRepository) GetMultiplier(ctx context.Context, guildID string) (*domain.Multiplier, error) {
	var (
		hundredths  pgtype.Int4
		expiresAt   pgtype.Timestamptz
		description pgtype.Text
	)
	err := r.db.QueryRow(ctx, `
		SELECT multiplier_hundredths, multiplier_expires_at, multiplier_description
		FROM guild_configs WHERE guild_id = $1
	`, guildID).Scan(&hundredths, &expiresAt, &description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(OpGetMultiplier, err)
	}
	return toMultiplier(hundredths, expiresAt, description), nil
}

// SetMultiplierIfNone stores m unless an unexpired multiplier is present at now.
// The check and the write are one statement.
func (r *GuildRepository) SetMultiplierIfNone(ctx context.Context, guildID string, m domain.Multiplier, now time.Time) (bool, error) {
	var stored string
	err := r.db.QueryRow(ctx, `
		INSERT INTO guild_configs (guild_id, multiplier_hundredths, multiplier_expires_at, multiplier_description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id) DO UPDATE SET
			multiplier_hundredths = EXCLUDED.multiplier_hundredths,
			multiplier_expires_at = EXCLUDED.multiplier_expires_at,
			multiplier_description = EXCLUDED.multiplier_description,
			updated_at = NOW()
		WHERE guild_configs.multiplier_hundredths IS NULL
			OR (guild_configs.multiplier_expires_at IS NOT NULL AND guild_configs.multiplier_expires_at <= $5)
		RETURNING guild_id
	`, guildID, m.Hundredths, timestamptz(m.ExpiresAt), m.Description, now).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr(OpSetMultiplier, err)
	}
	return true, nil
}

// SetMultiplierExpiry changes the expiry of the stored multiplier. A nil expiry makes it indefinite.
func (r *GuildRepository) SetMultiplierExpiry(ctx context.Context, guildID string, expiresAt *time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE guild_configs SET multiplier_expires_at = $2, updated_at = NOW()
		WHERE guild_id = $1 AND multiplier_hundredths IS NOT NULL
	`, guildID, timestamptz(expiresAt))
	if err != nil {
		return false, storageErr(OpSetExpiry, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ClearMultiplierIfExpired clears the multiplier when its expiry is at or before now
func (r *GuildRepository) ClearMultiplierIfExpired(ctx context.Context, guildID string, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE guild_configs SET
			multiplier_hundredths = NULL,
			multiplier_expires_at = NULL,
			multiplier_description = NULL,
			updated_at = NOW()
		WHERE guild_id = $1
			AND multiplier_hundredths IS NOT NULL
			AND multiplier_expires_at IS NOT NULL
			AND multiplier_expires_at <= $2
	`, guildID, now)
	if err != nil {
		return false, storageErr(OpClearMultiplier, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ClearMultiplier removes any multiplier of the guild
func (r *GuildRepository) ClearMultiplier(ctx context.Context, guildID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE guild_configs SET
			multiplier_hundredths = NULL,
			multiplier_expires_at = NULL,
			multiplier_description = NULL,
			updated_at = NOW()
		WHERE guild_id = $1
	`, guildID)
	return storageErr(OpClearMultiplier, err)
}
