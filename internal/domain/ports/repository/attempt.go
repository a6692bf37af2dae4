package repository

import (
	"context"

	"telegram-promo-campaign/internal/domain/model"
)

// AttemptRepository is the append-only audit log port. There is no update or
// delete on purpose.
type AttemptRepository interface {
	Append(ctx context.Context, tx Tx, attempt *model.RedemptionAttempt) error
	// CountByUser exists for operational inspection of abuse patterns.
	CountByUser(ctx context.Context, tx Tx, userID string) (int, error)
}
