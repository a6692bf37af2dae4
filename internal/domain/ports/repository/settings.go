package repository

import (
	"context"

	"telegram-promo-campaign/internal/domain/model"
)

// SettingsRepository reads and writes the singleton usage-limit row.
// UsageLimit must hit storage on every call; the limiter depends on reading
// operational changes immediately.
type SettingsRepository interface {
	UsageLimit(ctx context.Context, tx Tx) (*model.UsageLimitSetting, error)
	SaveUsageLimit(ctx context.Context, tx Tx, s *model.UsageLimitSetting) error
}
