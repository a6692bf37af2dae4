package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
)

// Compile-time check
var _ AnalyticsUseCase = (*analyticsUC)(nil)

// AnalyticsUseCase buckets successful redemptions into UTC calendar-day
// series plus a whole-range gift distribution. Read-only and off the write
// path; eventual consistency of its output is acceptable.
type AnalyticsUseCase interface {
	Get(ctx context.Context, from, to time.Time) (*model.AnalyticsReport, error)
}

type analyticsUC struct {
	codes repository.CodeRepository
	gifts repository.GiftRepository

	log *zerolog.Logger
}

func NewAnalyticsUseCase(codes repository.CodeRepository, gifts repository.GiftRepository, logger *zerolog.Logger) *analyticsUC {
	return &analyticsUC{codes: codes, gifts: gifts, log: logger}
}

const dateLayout = "02.01.2006"

func (u *analyticsUC) Get(ctx context.Context, from, to time.Time) (*model.AnalyticsReport, error) {
	rows, err := u.codes.ClaimRows(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	fromMs := from.UnixMilli()
	toMs := to.UnixMilli()

	type dayCounts struct {
		total    int
		withGift int
	}
	days := make(map[int64]*dayCounts)
	giftCounts := make(map[string]int)

	for _, r := range rows {
		t, err := model.ParseClaimTime(r.UsedAt)
		if err != nil {
			// Legacy rows carry a handful of malformed timestamps; skip
			// them rather than failing the whole report.
			u.log.Warn().Str("used_at", r.UsedAt).Msg("unparseable claim timestamp")
			continue
		}
		ms := t.UnixMilli()
		if ms < fromMs || ms > toMs {
			continue
		}
		bucket := model.DayBucket(t)
		dc := days[bucket]
		if dc == nil {
			dc = &dayCounts{}
			days[bucket] = dc
		}
		dc.total++
		if r.GiftID != nil {
			dc.withGift++
			giftCounts[*r.GiftID]++
		}
	}

	report := &model.AnalyticsReport{}

	if len(days) == 0 {
		// Bracket the requested range with zero points so downstream
		// charts always have a series to draw.
		report.Dates = []string{from.UTC().Format(dateLayout), to.UTC().Format(dateLayout)}
		report.CodesCount = []int{0, 0}
		report.CodesWithGiftCount = []int{0, 0}
	} else {
		buckets := make([]int64, 0, len(days))
		for b := range days {
			buckets = append(buckets, b)
		}
		sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
		for _, b := range buckets {
			report.Dates = append(report.Dates, time.UnixMilli(b).UTC().Format(dateLayout))
			report.CodesCount = append(report.CodesCount, days[b].total)
			report.CodesWithGiftCount = append(report.CodesWithGiftCount, days[b].withGift)
		}
	}

	if len(giftCounts) > 0 {
		ids := make([]string, 0, len(giftCounts))
		for id := range giftCounts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		names, err := u.gifts.NamesByIDs(ctx, repository.NoTX, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			report.GiftDistribution = append(report.GiftDistribution, model.GiftSlice{
				Name:  names[id],
				Value: giftCounts[id],
			})
		}
	}

	return report, nil
}
