//go:build !integration

package usecase

import (
	"context"
	"testing"
	"time"

	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
)

func analyticsFixture(rows []repository.ClaimRow) (*rawClaimRepo, *memGiftRepo, AnalyticsUseCase) {
	codes := &rawClaimRepo{memCodeRepo: newMemCodeRepo(), rows: rows}
	gifts := newMemGiftRepo()
	return codes, gifts, NewAnalyticsUseCase(codes, gifts, newLogger())
}

func TestAnalytics_DayBucketing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d1 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	d1b := time.Date(2024, 5, 1, 22, 30, 0, 0, time.UTC)
	d2 := time.Date(2024, 5, 2, 11, 0, 0, 0, time.UTC)
	gift := "gift-1"

	_, gifts, uc := analyticsFixture([]repository.ClaimRow{
		{UsedAt: model.FormatClaimTime(d1)},
		{UsedAt: model.FormatClaimTime(d1b), GiftID: &gift},
		{UsedAt: model.FormatClaimTime(d2)},
	})
	_ = gifts.Save(ctx, repository.NoTX, &model.Gift{ID: gift, Name: "Blender", Tier: model.TierEconomy})

	report, err := uc.Get(ctx, d1.Add(-time.Hour), d2.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantDates := []string{"01.05.2024", "02.05.2024"}
	if len(report.Dates) != 2 || report.Dates[0] != wantDates[0] || report.Dates[1] != wantDates[1] {
		t.Errorf("expected dates %v, got %v", wantDates, report.Dates)
	}
	if len(report.CodesCount) != 2 || report.CodesCount[0] != 2 || report.CodesCount[1] != 1 {
		t.Errorf("expected counts [2 1], got %v", report.CodesCount)
	}
	if len(report.CodesWithGiftCount) != 2 || report.CodesWithGiftCount[0] != 1 || report.CodesWithGiftCount[1] != 0 {
		t.Errorf("expected gift counts [1 0], got %v", report.CodesWithGiftCount)
	}
	if len(report.GiftDistribution) != 1 || report.GiftDistribution[0].Name != "Blender" || report.GiftDistribution[0].Value != 1 {
		t.Errorf("unexpected distribution: %v", report.GiftDistribution)
	}
}

func TestAnalytics_AcceptsBothTimestampEncodings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, _, uc := analyticsFixture([]repository.ClaimRow{
		{UsedAt: model.FormatClaimTime(day)},
		{UsedAt: "1714564800000"}, // 2024-05-01T12:00:00Z as epoch ms
	})

	report, err := uc.Get(ctx, day.Add(-time.Hour), day.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.CodesCount) != 1 || report.CodesCount[0] != 2 {
		t.Errorf("expected both rows in one bucket, got %v", report.CodesCount)
	}
}

func TestAnalytics_SkipsMalformedTimestamps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, _, uc := analyticsFixture([]repository.ClaimRow{
		{UsedAt: model.FormatClaimTime(day)},
		{UsedAt: "garbage"},
	})

	report, err := uc.Get(ctx, day.Add(-time.Hour), day.Add(time.Hour))
	if err != nil {
		t.Fatalf("expected malformed row to be skipped, got error: %v", err)
	}
	if len(report.CodesCount) != 1 || report.CodesCount[0] != 1 {
		t.Errorf("expected 1 counted row, got %v", report.CodesCount)
	}
}

func TestAnalytics_RangeFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	inside := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	before := time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)
	after := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	_, _, uc := analyticsFixture([]repository.ClaimRow{
		{UsedAt: model.FormatClaimTime(inside)},
		{UsedAt: model.FormatClaimTime(before)},
		{UsedAt: model.FormatClaimTime(after)},
	})

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	report, err := uc.Get(ctx, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Dates) != 1 || report.Dates[0] != "02.05.2024" {
		t.Errorf("expected only the in-range day, got %v", report.Dates)
	}
}

func TestAnalytics_EmptyRangeBrackets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, _, uc := analyticsFixture(nil)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC)
	report, err := uc.Get(ctx, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantDates := []string{"01.05.2024", "07.05.2024"}
	if len(report.Dates) != 2 || report.Dates[0] != wantDates[0] || report.Dates[1] != wantDates[1] {
		t.Errorf("expected bracketing dates %v, got %v", wantDates, report.Dates)
	}
	for _, n := range append(report.CodesCount, report.CodesWithGiftCount...) {
		if n != 0 {
			t.Errorf("expected zero counts, got %v / %v", report.CodesCount, report.CodesWithGiftCount)
		}
	}
	if len(report.GiftDistribution) != 0 {
		t.Errorf("expected empty distribution, got %v", report.GiftDistribution)
	}
}
