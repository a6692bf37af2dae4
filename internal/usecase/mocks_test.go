//go:build !integration

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-promo-campaign/internal/domain"
	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
)

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// memCodeRepo is a small in-memory implementation used by unit tests.
// Claim holds the lock for the full check-and-set so it matches the
// conditional-update semantics of the real table.
type memCodeRepo struct {
	mu    sync.RWMutex
	byID  map[int64]*model.Code
	order []int64

	insertErr error // simulate storage failures
	claimErr  error
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{byID: make(map[int64]*model.Code)}
}

func (m *memCodeRepo) Insert(ctx context.Context, tx repository.Tx, code *model.Code) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[code.ID]; ok {
		return domain.ErrAlreadyExists
	}
	for _, c := range m.byID {
		if c.Value == code.Value && c.DeletedAt == nil {
			return domain.ErrAlreadyExists
		}
	}
	cp := *code
	m.byID[code.ID] = &cp
	m.order = append(m.order, code.ID)
	return nil
}

// BulkInsert is all-or-nothing like the implicit batch transaction in the
// real repo: a conflict anywhere leaves the store untouched and reports
// the offending index.
func (m *memCodeRepo) BulkInsert(ctx context.Context, tx repository.Tx, codes []*model.Code) (int, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inBatch := make(map[string]struct{}, len(codes))
	for i, c := range codes {
		if _, ok := m.byID[c.ID]; ok {
			return i, domain.ErrAlreadyExists
		}
		if _, ok := inBatch[c.Value]; ok {
			return i, domain.ErrAlreadyExists
		}
		for _, stored := range m.byID {
			if stored.Value == c.Value && stored.DeletedAt == nil {
				return i, domain.ErrAlreadyExists
			}
		}
		inBatch[c.Value] = struct{}{}
	}
	for _, c := range codes {
		cp := *c
		m.byID[c.ID] = &cp
		m.order = append(m.order, c.ID)
	}
	return -1, nil
}

func (m *memCodeRepo) FindByValues(ctx context.Context, tx repository.Tx, values []string) (*model.Code, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range values {
		for _, id := range m.order {
			c := m.byID[id]
			if c.Value == v && c.DeletedAt == nil {
				cp := *c
				return &cp, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Code, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byID[id]
	if !ok || c.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCodeRepo) Claim(ctx context.Context, tx repository.Tx, id int64, userID string, at time.Time) (bool, error) {
	if m.claimErr != nil {
		return false, m.claimErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.DeletedAt != nil || c.IsUsed {
		return false, nil
	}
	used := at
	c.IsUsed = true
	c.UsedByID = &userID
	c.UsedAt = &used
	return true, nil
}

func (m *memCodeRepo) AllValues(ctx context.Context, tx repository.Tx) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.byID))
	for _, id := range m.order {
		out = append(out, m.byID[id].Value)
	}
	return out, nil
}

func (m *memCodeRepo) MaxID(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var max int64
	for id := range m.byID {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (m *memCodeRepo) CountUsedBy(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.byID {
		if c.IsUsed && c.DeletedAt == nil && c.UsedByID != nil && *c.UsedByID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memCodeRepo) SoftDelete(ctx context.Context, tx repository.Tx, id int64, deletedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

func (m *memCodeRepo) MarkGiftGiven(ctx context.Context, tx repository.Tx, id int64, givenBy string) (*model.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	c.GiftGivenAt = &now
	c.GiftGivenBy = &givenBy
	cp := *c
	return &cp, nil
}

func (m *memCodeRepo) Paginate(ctx context.Context, tx repository.Tx, q repository.CodePageQuery) (*repository.CodePage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page := &repository.CodePage{}
	for _, id := range m.order {
		c := m.byID[id]
		if c.DeletedAt != nil {
			continue
		}
		page.Total++
		if c.IsUsed {
			page.TotalUsedCount++
		}
		cp := *c
		page.Data = append(page.Data, &cp)
	}
	return page, nil
}

func (m *memCodeRepo) PaginateUsedBy(ctx context.Context, tx repository.Tx, userID string, page, limit int) ([]*model.Code, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Code
	for _, id := range m.order {
		c := m.byID[id]
		if c.DeletedAt == nil && c.UsedByID != nil && *c.UsedByID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *memCodeRepo) ClaimRows(ctx context.Context, tx repository.Tx) ([]repository.ClaimRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []repository.ClaimRow
	for _, id := range m.order {
		c := m.byID[id]
		if c.DeletedAt != nil || !c.IsUsed || c.UsedAt == nil {
			continue
		}
		out = append(out, repository.ClaimRow{
			UsedAt: model.FormatClaimTime(*c.UsedAt),
			GiftID: c.GiftID,
		})
	}
	return out, nil
}

// rawClaimRepo wraps memCodeRepo to expose claim rows with hand-written
// used_at encodings for the analytics parser tests.
type rawClaimRepo struct {
	*memCodeRepo
	rows []repository.ClaimRow
}

func (m *rawClaimRepo) ClaimRows(ctx context.Context, tx repository.Tx) ([]repository.ClaimRow, error) {
	return m.rows, nil
}

// memAttemptRepo is the append-only audit log used by unit tests.
type memAttemptRepo struct {
	mu   sync.Mutex
	rows []*model.RedemptionAttempt
}

func newMemAttemptRepo() *memAttemptRepo { return &memAttemptRepo{} }

func (m *memAttemptRepo) Append(ctx context.Context, tx repository.Tx, a *model.RedemptionAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memAttemptRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.rows {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memAttemptRepo) all() []*model.RedemptionAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.RedemptionAttempt, len(m.rows))
	copy(out, m.rows)
	return out
}

type memGiftRepo struct {
	mu        sync.RWMutex
	byID      map[string]*model.Gift
	refreshed []string
}

func newMemGiftRepo() *memGiftRepo {
	return &memGiftRepo{byID: make(map[string]*model.Gift)}
}

func (m *memGiftRepo) Save(ctx context.Context, tx repository.Tx, g *model.Gift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	m.byID[g.ID] = &cp
	return nil
}

func (m *memGiftRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Gift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *memGiftRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Gift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Gift
	for _, g := range m.byID {
		if g.DeletedAt == nil {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memGiftRepo) NamesByIDs(ctx context.Context, tx repository.Tx, ids []string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if g, ok := m.byID[id]; ok {
			out[id] = g.Name
		}
	}
	return out, nil
}

func (m *memGiftRepo) RefreshUsedCount(ctx context.Context, tx repository.Tx, giftID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed = append(m.refreshed, giftID)
	return nil
}

type memSettingsRepo struct {
	mu      sync.RWMutex
	setting *model.UsageLimitSetting
}

func newMemSettingsRepo() *memSettingsRepo { return &memSettingsRepo{} }

func (m *memSettingsRepo) UsageLimit(ctx context.Context, tx repository.Tx) (*model.UsageLimitSetting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.setting == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.setting
	return &cp, nil
}

func (m *memSettingsRepo) SaveUsageLimit(ctx context.Context, tx repository.Tx, s *model.UsageLimitSetting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.setting = &cp
	return nil
}

// memUserRepo backs the user usecase tests.
type memUserRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[int64]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.TelegramID] = &cp
	return nil
}

func (m *memUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}
