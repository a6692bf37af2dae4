package repository

import (
	"context"

	"telegram-promo-campaign/internal/domain/model"
)

// GiftRepository is the port over the prize catalogue.
type GiftRepository interface {
	Save(ctx context.Context, tx Tx, gift *model.Gift) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Gift, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Gift, error)
	// NamesByIDs resolves display names for the analytics distribution.
	NamesByIDs(ctx context.Context, tx Tx, ids []string) (map[string]string, error)
	// RefreshUsedCount recomputes used_count from the code table with a
	// separate counting query. Not atomic with the claim; concurrent claims
	// on the same gift can transiently mis-count.
	RefreshUsedCount(ctx context.Context, tx Tx, giftID string) error
}
