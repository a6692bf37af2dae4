package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.AttemptRepository = (*attemptRepo)(nil)

// attemptRepo is append-only by construction: there is no UPDATE or DELETE
// statement in this file on purpose.
type attemptRepo struct {
	pool *pgxpool.Pool
}

func NewAttemptRepo(pool *pgxpool.Pool) *attemptRepo {
	return &attemptRepo{pool: pool}
}

func (r *attemptRepo) Append(ctx context.Context, tx repository.Tx, a *model.RedemptionAttempt) error {
	const q = `
INSERT INTO code_attempts (id, raw_text, code_id, user_id, created_at)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := execSQL(ctx, r.pool, tx, q, a.ID, a.RawText, a.CodeID, a.UserID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM code_attempts WHERE user_id = $1;`, userID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}
