package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-promo-campaign/internal/domain"
	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.SettingsRepository = (*settingsRepo)(nil)

// settingsRepo reads the singleton row straight from storage on every call.
// No caching: the limiter contract is that dashboard changes apply to the
// very next inbound message.
type settingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *settingsRepo {
	return &settingsRepo{pool: pool}
}

func (r *settingsRepo) UsageLimit(ctx context.Context, tx repository.Tx) (*model.UsageLimitSetting, error) {
	const q = `SELECT code_limit_enabled, code_limit_per_user, updated_at FROM settings WHERE id = 1;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	var s model.UsageLimitSetting
	if err := row.Scan(&s.Enabled, &s.MaxPerUser, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &s, nil
}

func (r *settingsRepo) SaveUsageLimit(ctx context.Context, tx repository.Tx, s *model.UsageLimitSetting) error {
	const q = `
INSERT INTO settings (id, code_limit_enabled, code_limit_per_user, updated_at)
VALUES (1, $1, $2, NOW())
ON CONFLICT (id) DO UPDATE SET
  code_limit_enabled = EXCLUDED.code_limit_enabled,
  code_limit_per_user = EXCLUDED.code_limit_per_user,
  updated_at = NOW();
`
	_, err := execSQL(ctx, r.pool, tx, q, s.Enabled, s.MaxPerUser)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
