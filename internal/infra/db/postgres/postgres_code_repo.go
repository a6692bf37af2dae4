package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-promo-campaign/internal/domain"
	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CodeRepository = (*codeRepo)(nil)

type codeRepo struct {
	pool *pgxpool.Pool
}

func NewCodeRepo(pool *pgxpool.Pool) *codeRepo {
	return &codeRepo{pool: pool}
}

const codeColumns = `id, value, version, gift_id, is_used, used_by_id, used_at,
       gift_given_at, gift_given_by, created_at, deleted_at`

func scanCode(row pgx.Row) (*model.Code, error) {
	var c model.Code
	var usedAt *string
	err := row.Scan(
		&c.ID, &c.Value, &c.Version, &c.GiftID, &c.IsUsed, &c.UsedByID, &usedAt,
		&c.GiftGivenAt, &c.GiftGivenBy, &c.CreatedAt, &c.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if usedAt != nil {
		if t, perr := model.ParseClaimTime(*usedAt); perr == nil {
			c.UsedAt = &t
		}
	}
	return &c, nil
}

const insertCodeSQL = `
INSERT INTO codes (id, value, version, gift_id, is_used, used_by_id, used_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

func codeInsertArgs(c *model.Code) []interface{} {
	var usedAt *string
	if c.UsedAt != nil {
		s := model.FormatClaimTime(*c.UsedAt)
		usedAt = &s
	}
	return []interface{}{c.ID, c.Value, c.Version, c.GiftID, c.IsUsed, c.UsedByID, usedAt, c.CreatedAt}
}

func (r *codeRepo) Insert(ctx context.Context, tx repository.Tx, code *model.Code) error {
	_, err := execSQL(ctx, r.pool, tx, insertCodeSQL, codeInsertArgs(code)...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert code: %w", err)
	}
	return nil
}

// BulkInsert writes the batch through a single pgx batch round trip.
// Outside an explicit transaction pgconn runs the batch in an implicit
// one, so any rejection rolls back the whole batch. Results are consumed
// in order; on the first uniqueness rejection the offending index is
// reported so the caller can regenerate that value and resubmit.
func (r *codeRepo) BulkInsert(ctx context.Context, tx repository.Tx, codes []*model.Code) (int, error) {
	b := &pgx.Batch{}
	for _, c := range codes {
		b.Queue(insertCodeSQL, codeInsertArgs(c)...)
	}
	br, err := sendBatch(ctx, r.pool, tx, b)
	if err != nil {
		return -1, err
	}
	defer br.Close()

	for i := range codes {
		if _, err := br.Exec(); err != nil {
			if isUniqueViolation(err) {
				return i, domain.ErrAlreadyExists
			}
			return i, fmt.Errorf("bulk insert row %d: %w", i, err)
		}
	}
	return -1, nil
}

func (r *codeRepo) FindByValues(ctx context.Context, tx repository.Tx, values []string) (*model.Code, error) {
	const q = `
SELECT ` + codeColumns + `
  FROM codes
 WHERE value = ANY($1) AND deleted_at IS NULL
 LIMIT 1;
`
	row, err := pickRow(ctx, r.pool, tx, q, values)
	if err != nil {
		return nil, err
	}
	return scanCode(row)
}

func (r *codeRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Code, error) {
	const q = `SELECT ` + codeColumns + ` FROM codes WHERE id = $1 AND deleted_at IS NULL;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanCode(row)
}

// Claim is the single conditional write that arbitrates concurrent
// redemptions: the is_used=FALSE guard makes exactly one writer win.
func (r *codeRepo) Claim(ctx context.Context, tx repository.Tx, id int64, userID string, at time.Time) (bool, error) {
	const q = `
UPDATE codes
   SET is_used = TRUE, used_by_id = $2, used_at = $3
 WHERE id = $1 AND is_used = FALSE AND deleted_at IS NULL;
`
	tag, err := execSQL(ctx, r.pool, tx, q, id, userID, model.FormatClaimTime(at))
	if err != nil {
		return false, fmt.Errorf("claim code %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *codeRepo) AllValues(ctx context.Context, tx repository.Tx) ([]string, error) {
	rows, err := querySQL(ctx, r.pool, tx, `SELECT value FROM codes;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *codeRepo) MaxID(ctx context.Context, tx repository.Tx) (int64, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COALESCE(MAX(id), 0) FROM codes;`)
	if err != nil {
		return 0, err
	}
	var max int64
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("max code id: %w", err)
	}
	return max, nil
}

func (r *codeRepo) CountUsedBy(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM codes WHERE used_by_id = $1 AND is_used AND deleted_at IS NULL;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count used by: %w", err)
	}
	return n, nil
}

func (r *codeRepo) SoftDelete(ctx context.Context, tx repository.Tx, id int64, deletedBy string) error {
	const q = `UPDATE codes SET deleted_at = NOW(), deleted_by = $2 WHERE id = $1 AND deleted_at IS NULL;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, deletedBy)
	if err != nil {
		return fmt.Errorf("soft delete code %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *codeRepo) MarkGiftGiven(ctx context.Context, tx repository.Tx, id int64, givenBy string) (*model.Code, error) {
	const q = `
UPDATE codes
   SET gift_given_at = NOW(), gift_given_by = $2
 WHERE id = $1 AND deleted_at IS NULL
RETURNING ` + codeColumns + `;`
	row, err := pickRow(ctx, r.pool, tx, q, id, givenBy)
	if err != nil {
		return nil, err
	}
	return scanCode(row)
}

// Paginate serves the admin read surface: filterable, sorted
// used_at DESC NULLS LAST, id ASC, with claim totals alongside.
func (r *codeRepo) Paginate(ctx context.Context, tx repository.Tx, q repository.CodePageQuery) (*repository.CodePage, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	where := `deleted_at IS NULL`
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if q.Used != nil {
		if *q.Used {
			where += ` AND used_at IS NOT NULL`
		} else {
			where += ` AND used_at IS NULL`
		}
	}
	switch {
	case q.GiftID == "":
	case q.GiftID == "withGift":
		where += ` AND gift_id IS NOT NULL`
	default:
		where += ` AND gift_id = ` + arg(q.GiftID)
	}
	if q.Search != "" {
		if id, err := strconv.ParseInt(q.Search, 10, 64); err == nil {
			where += ` AND (value = ` + arg(q.Search) + ` OR id = ` + arg(id) + `)`
		} else {
			where += ` AND value = ` + arg(q.Search)
		}
	}

	page := &repository.CodePage{}

	countRow, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM codes WHERE `+where+`;`, args...)
	if err != nil {
		return nil, err
	}
	if err := countRow.Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count codes: %w", err)
	}

	usedRow, err := pickRow(ctx, r.pool, tx,
		`SELECT COUNT(*) FROM codes WHERE deleted_at IS NULL AND is_used AND used_at IS NOT NULL;`)
	if err != nil {
		return nil, err
	}
	if err := usedRow.Scan(&page.TotalUsedCount); err != nil {
		return nil, fmt.Errorf("count used codes: %w", err)
	}

	sql := `SELECT ` + codeColumns + ` FROM codes WHERE ` + where +
		` ORDER BY used_at DESC NULLS LAST, id ASC LIMIT ` + arg(q.Limit) +
		` OFFSET ` + arg((q.Page-1)*q.Limit) + `;`
	rows, err := querySQL(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		page.Data = append(page.Data, c)
	}
	return page, rows.Err()
}

func (r *codeRepo) PaginateUsedBy(ctx context.Context, tx repository.Tx, userID string, page, limit int) ([]*model.Code, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}

	row, err := pickRow(ctx, r.pool, tx,
		`SELECT COUNT(*) FROM codes WHERE used_by_id = $1 AND deleted_at IS NULL;`, userID)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count user codes: %w", err)
	}

	rows, err := querySQL(ctx, r.pool, tx,
		`SELECT `+codeColumns+` FROM codes
		  WHERE used_by_id = $1 AND deleted_at IS NULL
		  ORDER BY id ASC LIMIT $2 OFFSET $3;`,
		userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Code
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// ClaimRows hands used_at to the aggregator as stored: legacy rows carry
// epoch milliseconds, newer rows an ISO string. Parsing happens Go-side.
func (r *codeRepo) ClaimRows(ctx context.Context, tx repository.Tx) ([]repository.ClaimRow, error) {
	const q = `
SELECT used_at, gift_id
  FROM codes
 WHERE is_used AND used_at IS NOT NULL AND deleted_at IS NULL;
`
	rows, err := querySQL(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.ClaimRow
	for rows.Next() {
		var cr repository.ClaimRow
		if err := rows.Scan(&cr.UsedAt, &cr.GiftID); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}
