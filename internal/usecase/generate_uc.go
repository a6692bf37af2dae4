package usecase

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-promo-campaign/internal/domain"
	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
	"telegram-promo-campaign/internal/infra/metrics"
)

// Compile-time check
var _ GenerateUseCase = (*generateUC)(nil)

// GenerateUseCase produces bulk batches of fresh, collision-free codes and
// exports each prefix group as a (sequence, value) table for offline
// distribution. It is a privileged one-shot operation: no cancellation
// semantics, and a failed run is resumed by re-invoking against the new id
// high-water mark.
type GenerateUseCase interface {
	Generate(ctx context.Context, reqs []PrefixRequest) (*BatchResult, error)
}

// PrefixRequest asks for Count codes under one 2-letter campaign prefix.
type PrefixRequest struct {
	Prefix string
	Count  int
}

// ExportFile describes one written (sequence, value) CSV.
type ExportFile struct {
	Prefix string
	Path   string
	Rows   int
}

// BatchResult summarizes one generation run.
type BatchResult struct {
	Total   int
	FirstID int64
	LastID  int64
	Files   []ExportFile
}

var prefixPattern = regexp.MustCompile(`^[A-Z]{2}$`)

type generateUC struct {
	codes repository.CodeRepository

	exportDir   string
	maxPerBatch int
	retryBudget int

	log *zerolog.Logger
}

func NewGenerateUseCase(codes repository.CodeRepository, exportDir string, maxPerBatch, retryBudget int, logger *zerolog.Logger) *generateUC {
	if maxPerBatch <= 0 || maxPerBatch > valueAddressSpace/8 {
		maxPerBatch = valueAddressSpace / 8
	}
	if retryBudget <= 0 {
		retryBudget = 100
	}
	return &generateUC{
		codes:       codes,
		exportDir:   exportDir,
		maxPerBatch: maxPerBatch,
		retryBudget: retryBudget,
		log:         logger,
	}
}

// Generate produces exactly Count fresh values per request, assigns dense
// sequential ids continuing from the current high-water mark (disjoint
// ranges per prefix in call order), bulk-persists them, and writes one
// export file per prefix.
func (u *generateUC) Generate(ctx context.Context, reqs []PrefixRequest) (*BatchResult, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	total := 0
	for _, r := range reqs {
		if !prefixPattern.MatchString(r.Prefix) {
			return nil, fmt.Errorf("prefix %q: %w", r.Prefix, domain.ErrBadPrefix)
		}
		if r.Count <= 0 {
			return nil, domain.ErrInvalidArgument
		}
		if r.Count > u.maxPerBatch {
			return nil, fmt.Errorf("count %d for prefix %s: %w", r.Count, r.Prefix, domain.ErrBatchTooLarge)
		}
		total += r.Count
	}

	// The in-memory pre-filter over every stored value keeps rejection
	// sampling cheap; the unique index remains the final authority.
	existing, err := u.codes.AllValues(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(existing)+total)
	for _, v := range existing {
		seen[v] = struct{}{}
	}

	maxID, err := u.codes.MaxID(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	firstID := maxID + 1

	result := &BatchResult{FirstID: firstID}
	nextID := firstID
	now := time.Now()

	for _, req := range reqs {
		batch := make([]*model.Code, 0, req.Count)
		for i := 0; i < req.Count; i++ {
			value, err := u.freshValue(req.Prefix, seen)
			if err != nil {
				return result, err
			}
			batch = append(batch, &model.Code{
				ID:        nextID,
				Value:     value,
				Version:   2,
				CreatedAt: now,
			})
			nextID++
		}

		if err := u.persist(ctx, req.Prefix, batch, seen); err != nil {
			// Already-written rows stay; the operator re-runs against the
			// new high-water id.
			return result, err
		}

		file, err := u.export(req.Prefix, batch)
		if err != nil {
			return result, err
		}
		result.Files = append(result.Files, file)
		result.Total += req.Count
		result.LastID = batch[len(batch)-1].ID
		metrics.AddCodesGenerated(req.Prefix, req.Count)

		u.log.Info().
			Str("prefix", req.Prefix).
			Int("count", req.Count).
			Int64("first_id", batch[0].ID).
			Int64("last_id", batch[len(batch)-1].ID).
			Msg("generation batch persisted")
	}

	return result, nil
}

// freshValue rejection-samples until the candidate misses the in-memory set,
// then reserves it in the set.
func (u *generateUC) freshValue(prefix string, seen map[string]struct{}) (string, error) {
	for i := 0; i < u.retryBudget; i++ {
		v, err := randomCodeValue(prefix)
		if err != nil {
			return "", err
		}
		if _, dup := seen[v]; dup {
			metrics.IncGenerationCollision(prefix)
			continue
		}
		seen[v] = struct{}{}
		return v, nil
	}
	return "", domain.ErrCollisionExhausted
}

// persist bulk-writes the batch. A uniqueness rejection despite the
// pre-check means another writer raced us; the rejection rolls back the
// whole implicit batch transaction, so the full batch is resubmitted with
// only the offending value regenerated.
func (u *generateUC) persist(ctx context.Context, prefix string, batch []*model.Code, seen map[string]struct{}) error {
	for budget := u.retryBudget; ; {
		idx, err := u.codes.BulkInsert(ctx, repository.NoTX, batch)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return err
		}
		if budget <= 0 {
			return domain.ErrCollisionExhausted
		}
		budget--
		metrics.IncGenerationCollision(prefix)
		value, verr := u.freshValue(prefix, seen)
		if verr != nil {
			return verr
		}
		u.log.Warn().
			Str("prefix", prefix).
			Str("rejected", batch[idx].Value).
			Str("replacement", value).
			Msg("uniqueness race during persist; resubmitting batch")
		batch[idx].Value = value
	}
}

// export writes the two-column (sequence, value) table for one prefix group.
// Sequence restarts at 1 per file, matching the printed scratch-card sheets.
func (u *generateUC) export(prefix string, batch []*model.Code) (ExportFile, error) {
	if err := os.MkdirAll(u.exportDir, 0o755); err != nil {
		return ExportFile{}, fmt.Errorf("export dir: %w", err)
	}
	name := fmt.Sprintf("codes-%s-%s.csv", prefix, ulid.MustNew(ulid.Now(), rand.Reader))
	path := filepath.Join(u.exportDir, name)

	f, err := os.Create(path)
	if err != nil {
		return ExportFile{}, fmt.Errorf("create export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "code"}); err != nil {
		return ExportFile{}, err
	}
	for i, c := range batch {
		if err := w.Write([]string{strconv.Itoa(i + 1), c.Value}); err != nil {
			return ExportFile{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return ExportFile{}, err
	}
	return ExportFile{Prefix: prefix, Path: path, Rows: len(batch)}, nil
}
