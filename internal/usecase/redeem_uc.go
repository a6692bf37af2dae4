package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"telegram-promo-campaign/internal/domain"
	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
	"telegram-promo-campaign/internal/infra/logging"
	"telegram-promo-campaign/internal/infra/metrics"
)

// Compile-time check
var _ RedeemUseCase = (*redeemUC)(nil)

// RedeemUseCase is the atomic claim state machine. One call handles one
// inbound free-text submission end to end: normalization, audit, the
// per-user limit gate, tier resolution and the conditional claim write.
type RedeemUseCase interface {
	Redeem(ctx context.Context, userID, rawText string) (*model.Outcome, error)
}

// lazyInsertRetries bounds the id-assignment race on the lazy-issuance path.
const lazyInsertRetries = 3

type redeemUC struct {
	codes    repository.CodeRepository
	attempts repository.AttemptRepository
	gifts    repository.GiftRepository
	settings repository.SettingsRepository
	manifest *model.TierManifest

	log *zerolog.Logger
}

func NewRedeemUseCase(
	codes repository.CodeRepository,
	attempts repository.AttemptRepository,
	gifts repository.GiftRepository,
	settings repository.SettingsRepository,
	manifest *model.TierManifest,
	logger *zerolog.Logger,
) *redeemUC {
	return &redeemUC{
		codes:    codes,
		attempts: attempts,
		gifts:    gifts,
		settings: settings,
		manifest: manifest,
		log:      logger,
	}
}

// Redeem runs the claim transition for one inbound text. Business outcomes
// (fake, already-used, limit-reached, success) come back in the Outcome;
// only storage failures return an error.
func (u *redeemUC) Redeem(ctx context.Context, userID, rawText string) (*model.Outcome, error) {
	defer logging.TraceDuration(u.log, "RedeemUC.Redeem")()
	start := time.Now()
	out, err := u.redeem(ctx, userID, rawText, start)
	if err != nil {
		metrics.ObserveRedemption("error", time.Since(start))
		return nil, err
	}
	metrics.ObserveRedemption(string(out.Kind), time.Since(start))
	return out, nil
}

func (u *redeemUC) redeem(ctx context.Context, userID, rawText string, now time.Time) (*model.Outcome, error) {
	candidates := model.CandidateValues(rawText)

	var code *model.Code
	if len(candidates) > 0 {
		found, err := u.codes.FindByValues(ctx, repository.NoTX, candidates)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		code = found
	}

	// Exactly one audit row per inbound candidate text, whatever happens
	// below. Written before the limit gate so capped attempts are kept too.
	var codeID *int64
	if code != nil {
		id := code.ID
		codeID = &id
	}
	if err := u.attempts.Append(ctx, repository.NoTX, model.NewRedemptionAttempt(rawText, codeID, userID, now)); err != nil {
		return nil, err
	}

	allowed, err := u.checkLimit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		u.log.Info().Str("user_id", userID).Msg("redemption denied by usage limit")
		return &model.Outcome{Kind: model.OutcomeLimitReached}, nil
	}

	canonical := model.CanonicalValue(rawText)
	tier, winner := u.manifest.Resolve(canonical)
	if !winner {
		return &model.Outcome{Kind: model.OutcomeFake}, nil
	}

	if code != nil && code.IsUsed && !code.ClaimedBy(userID) {
		return &model.Outcome{Kind: model.OutcomeAlreadyUsed}, nil
	}

	switch {
	case code == nil:
		// Manifest winner that was never seeded as a row: issue it claimed.
		inserted, err := u.lazyIssue(ctx, canonical, userID, now)
		if err != nil {
			return nil, err
		}
		if inserted == nil {
			// Lost the issuance race to another claimer.
			return &model.Outcome{Kind: model.OutcomeAlreadyUsed}, nil
		}
		code = inserted

	case !code.IsUsed:
		claimed, err := u.codes.Claim(ctx, repository.NoTX, code.ID, userID, now)
		if err != nil {
			return nil, err
		}
		if !claimed {
			// Zero rows affected: a concurrent claimer got there first.
			// Re-read to distinguish "same user raced itself" from a loss.
			fresh, err := u.codes.FindByID(ctx, repository.NoTX, code.ID)
			if err != nil {
				return nil, err
			}
			if !fresh.ClaimedBy(userID) {
				return &model.Outcome{Kind: model.OutcomeAlreadyUsed}, nil
			}
			code = fresh
		} else {
			used := now
			code.IsUsed = true
			code.UsedByID = &userID
			code.UsedAt = &used
			u.refreshGiftCounter(ctx, code)
		}

	default:
		// Re-submission by the claiming user: idempotent success, no write.
	}

	return &model.Outcome{
		Kind:   model.OutcomeSuccess,
		Tier:   tier,
		GiftID: code.GiftID,
		CodeID: &code.ID,
	}, nil
}

// checkLimit reads the singleton setting fresh each time; a dashboard toggle
// takes effect on the next message. The count/claim window is deliberately
// unguarded (see the concurrency notes in DESIGN.md).
func (u *redeemUC) checkLimit(ctx context.Context, userID string) (bool, error) {
	s, err := u.settings.UsageLimit(ctx, repository.NoTX)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	if !s.Enabled {
		return true, nil
	}
	n, err := u.codes.CountUsedBy(ctx, repository.NoTX, userID)
	if err != nil {
		return false, err
	}
	return n < s.MaxPerUser, nil
}

// lazyIssue inserts an already-claimed row for a manifest winner with no
// pre-seeded row. A value-uniqueness rejection means another claimer issued
// it concurrently; an id rejection means a generation batch raced us, so the
// id is re-read and the insert retried.
func (u *redeemUC) lazyIssue(ctx context.Context, value, userID string, now time.Time) (*model.Code, error) {
	for i := 0; i < lazyInsertRetries; i++ {
		maxID, err := u.codes.MaxID(ctx, repository.NoTX)
		if err != nil {
			return nil, err
		}
		used := now
		code := &model.Code{
			ID:        maxID + 1,
			Value:     value,
			Version:   2,
			IsUsed:    true,
			UsedByID:  &userID,
			UsedAt:    &used,
			CreatedAt: now,
		}
		err = u.codes.Insert(ctx, repository.NoTX, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		existing, ferr := u.codes.FindByValues(ctx, repository.NoTX, []string{value})
		if ferr == nil {
			if existing.ClaimedBy(userID) {
				return existing, nil
			}
			return nil, nil
		}
		if !errors.Is(ferr, domain.ErrNotFound) {
			return nil, ferr
		}
		// The conflict was on the id column; loop with a fresh high-water mark.
	}
	return nil, domain.ErrAlreadyExists
}

// refreshGiftCounter updates the per-gift used counter with a separate
// counting query after the claim. Failure here never fails the redemption.
func (u *redeemUC) refreshGiftCounter(ctx context.Context, code *model.Code) {
	if code.GiftID == nil {
		return
	}
	if err := u.gifts.RefreshUsedCount(ctx, repository.NoTX, *code.GiftID); err != nil {
		u.log.Warn().Err(err).Str("gift_id", *code.GiftID).Msg("gift used-count refresh failed")
	}
}
