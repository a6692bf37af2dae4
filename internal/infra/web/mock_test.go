//go:build !integration

package web

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"

	"telegram-promo-campaign/internal/domain"
	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
)

// stubCodeRepo serves canned pages; write methods record their arguments.
type stubCodeRepo struct {
	page      *repository.CodePage
	usedBy    []*model.Code
	byID      map[int64]*model.Code
	lastQuery repository.CodePageQuery
	deleted   []int64
	given     []int64
}

func newStubCodeRepo() *stubCodeRepo {
	return &stubCodeRepo{page: &repository.CodePage{}, byID: map[int64]*model.Code{}}
}

func (s *stubCodeRepo) Insert(ctx context.Context, tx repository.Tx, c *model.Code) error {
	return nil
}

func (s *stubCodeRepo) BulkInsert(ctx context.Context, tx repository.Tx, cs []*model.Code) (int, error) {
	return -1, nil
}

func (s *stubCodeRepo) FindByValues(ctx context.Context, tx repository.Tx, values []string) (*model.Code, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Code, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *stubCodeRepo) Claim(ctx context.Context, tx repository.Tx, id int64, userID string, at time.Time) (bool, error) {
	return false, nil
}

func (s *stubCodeRepo) AllValues(ctx context.Context, tx repository.Tx) ([]string, error) {
	return nil, nil
}

func (s *stubCodeRepo) MaxID(ctx context.Context, tx repository.Tx) (int64, error) { return 0, nil }

func (s *stubCodeRepo) CountUsedBy(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	return 0, nil
}

func (s *stubCodeRepo) SoftDelete(ctx context.Context, tx repository.Tx, id int64, deletedBy string) error {
	if _, ok := s.byID[id]; !ok {
		return domain.ErrNotFound
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCodeRepo) MarkGiftGiven(ctx context.Context, tx repository.Tx, id int64, givenBy string) (*model.Code, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.given = append(s.given, id)
	now := time.Now()
	cp := *c
	cp.GiftGivenAt = &now
	cp.GiftGivenBy = &givenBy
	return &cp, nil
}

func (s *stubCodeRepo) Paginate(ctx context.Context, tx repository.Tx, q repository.CodePageQuery) (*repository.CodePage, error) {
	s.lastQuery = q
	return s.page, nil
}

func (s *stubCodeRepo) PaginateUsedBy(ctx context.Context, tx repository.Tx, userID string, page, limit int) ([]*model.Code, int, error) {
	return s.usedBy, len(s.usedBy), nil
}

func (s *stubCodeRepo) ClaimRows(ctx context.Context, tx repository.Tx) ([]repository.ClaimRow, error) {
	return nil, nil
}

type stubUserRepo struct {
	count int
}

func (s *stubUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error { return nil }

func (s *stubUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	return nil, domain.ErrNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return nil, domain.ErrNotFound
}

func (s *stubUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	return s.count, nil
}

type stubGiftRepo struct {
	gifts     []*model.Gift
	refreshed []string
}

func (s *stubGiftRepo) Save(ctx context.Context, tx repository.Tx, g *model.Gift) error { return nil }

func (s *stubGiftRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Gift, error) {
	return nil, domain.ErrNotFound
}

func (s *stubGiftRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Gift, error) {
	return s.gifts, nil
}

func (s *stubGiftRepo) NamesByIDs(ctx context.Context, tx repository.Tx, ids []string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (s *stubGiftRepo) RefreshUsedCount(ctx context.Context, tx repository.Tx, giftID string) error {
	s.refreshed = append(s.refreshed, giftID)
	return nil
}

// passthroughTxManager runs the callback directly with NoTX; the stubs
// above ignore the handle anyway.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

type stubAnalytics struct {
	report   *model.AnalyticsReport
	lastFrom time.Time
	lastTo   time.Time
}

func (s *stubAnalytics) Get(ctx context.Context, from, to time.Time) (*model.AnalyticsReport, error) {
	s.lastFrom = from
	s.lastTo = to
	return s.report, nil
}
