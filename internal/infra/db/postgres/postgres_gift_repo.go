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
var _ repository.GiftRepository = (*giftRepo)(nil)

type giftRepo struct {
	pool *pgxpool.Pool
}

func NewGiftRepo(pool *pgxpool.Pool) *giftRepo {
	return &giftRepo{pool: pool}
}

func (r *giftRepo) Save(ctx context.Context, tx repository.Tx, g *model.Gift) error {
	const q = `
INSERT INTO gifts (id, name, tier, total_count, used_count)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  tier = EXCLUDED.tier,
  total_count = EXCLUDED.total_count,
  used_count = EXCLUDED.used_count;
`
	_, err := execSQL(ctx, r.pool, tx, q, g.ID, g.Name, g.Tier, g.TotalCount, g.UsedCount)
	if err != nil {
		return fmt.Errorf("save gift: %w", err)
	}
	return nil
}

func (r *giftRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Gift, error) {
	const q = `
SELECT id, name, tier, total_count, used_count, deleted_at
  FROM gifts WHERE id = $1 AND deleted_at IS NULL;
`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var g model.Gift
	if err := row.Scan(&g.ID, &g.Name, &g.Tier, &g.TotalCount, &g.UsedCount, &g.DeletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &g, nil
}

func (r *giftRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Gift, error) {
	const q = `
SELECT id, name, tier, total_count, used_count, deleted_at
  FROM gifts WHERE deleted_at IS NULL ORDER BY name;
`
	rows, err := querySQL(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Gift
	for rows.Next() {
		var g model.Gift
		if err := rows.Scan(&g.ID, &g.Name, &g.Tier, &g.TotalCount, &g.UsedCount, &g.DeletedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

func (r *giftRepo) NamesByIDs(ctx context.Context, tx repository.Tx, ids []string) (map[string]string, error) {
	rows, err := querySQL(ctx, r.pool, tx, `SELECT id, name FROM gifts WHERE id = ANY($1);`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[id] = name
	}
	return out, rows.Err()
}

// RefreshUsedCount recomputes the counter from the code table. Runs after
// the claim, outside it: two concurrent claims on the same gift can both
// see a stale count for a moment, which operations accepts.
func (r *giftRepo) RefreshUsedCount(ctx context.Context, tx repository.Tx, giftID string) error {
	const q = `
UPDATE gifts
   SET used_count = (
         SELECT COUNT(*) FROM codes
          WHERE gift_id = $1 AND is_used AND deleted_at IS NULL
       )
 WHERE id = $1;
`
	_, err := execSQL(ctx, r.pool, tx, q, giftID)
	if err != nil {
		return fmt.Errorf("refresh gift used_count: %w", err)
	}
	return nil
}
