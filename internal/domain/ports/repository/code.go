package repository

import (
	"context"
	"time"

	"telegram-promo-campaign/internal/domain/model"
)

// CodePageQuery is the admin read-surface filter set over Code rows.
type CodePageQuery struct {
	// Used filters by claim state when non-nil.
	Used *bool
	// GiftID filters by a concrete gift id; the sentinel value "withGift"
	// selects any row with a gift attached.
	GiftID string
	// Search matches value exactly, or id when numeric.
	Search string
	Page   int
	Limit  int
}

// CodePage is one page of the admin read surface, sorted used_at desc, id asc.
type CodePage struct {
	Data           []*model.Code
	Total          int
	TotalUsedCount int
}

// ClaimRow is the minimal projection the analytics aggregator reads:
// the raw used_at encoding plus the gift association.
type ClaimRow struct {
	UsedAt string
	GiftID *string
}

// CodeRepository is the port over the persisted code table. Every query
// excludes soft-deleted rows.
type CodeRepository interface {
	// Insert writes one row. Returns domain.ErrAlreadyExists when the
	// unique value index (or the id primary key) rejects it.
	Insert(ctx context.Context, tx Tx, code *model.Code) error
	// BulkInsert writes rows in order via a single batch round trip. The
	// batch is all-or-nothing: a uniqueness violation rolls back every row
	// and returns the offending index with domain.ErrAlreadyExists so the
	// caller can regenerate that value and resubmit the whole batch.
	BulkInsert(ctx context.Context, tx Tx, codes []*model.Code) (int, error)
	// FindByValues returns the first non-deleted row whose value matches
	// any candidate, or domain.ErrNotFound.
	FindByValues(ctx context.Context, tx Tx, values []string) (*model.Code, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Code, error)
	// Claim is the single point of mutual exclusion: a conditional write
	// guarded by is_used=FALSE. It reports whether this call won the claim.
	Claim(ctx context.Context, tx Tx, id int64, userID string, at time.Time) (bool, error)
	// AllValues preloads every stored value (including claimed and
	// soft-deleted rows) for the generator's duplicate pre-filter.
	AllValues(ctx context.Context, tx Tx) ([]string, error)
	// MaxID returns the id high-water mark, 0 for an empty table.
	MaxID(ctx context.Context, tx Tx) (int64, error)
	// CountUsedBy counts successful, non-deleted claims held by a user.
	CountUsedBy(ctx context.Context, tx Tx, userID string) (int, error)
	SoftDelete(ctx context.Context, tx Tx, id int64, deletedBy string) error
	// MarkGiftGiven records the physical hand-over of a gift-backed code.
	MarkGiftGiven(ctx context.Context, tx Tx, id int64, givenBy string) (*model.Code, error)
	Paginate(ctx context.Context, tx Tx, q CodePageQuery) (*CodePage, error)
	PaginateUsedBy(ctx context.Context, tx Tx, userID string, page, limit int) ([]*model.Code, int, error)
	// ClaimRows streams the rows the analytics aggregator buckets:
	// used, non-deleted, used_at non-null.
	ClaimRows(ctx context.Context, tx Tx) ([]ClaimRow, error)
}
