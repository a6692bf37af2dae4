package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"telegram-promo-campaign/internal/config"
	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
	pg "telegram-promo-campaign/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	for _, stmt := range pg.Schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("apply schema: %v", err)
		}
	}
	fmt.Println("schema applied")

	settingsRepo := pg.NewSettingsRepo(pool)
	if _, err := settingsRepo.UsageLimit(ctx, repository.NoTX); err != nil {
		setting := &model.UsageLimitSetting{Enabled: true, MaxPerUser: 3, UpdatedAt: time.Now()}
		if err := settingsRepo.SaveUsageLimit(ctx, repository.NoTX, setting); err != nil {
			log.Fatalf("seed settings: %v", err)
		}
		fmt.Printf("seeded usage limit: %d per user\n", setting.MaxPerUser)
	} else {
		fmt.Println("settings already present. No changes.")
	}

	giftRepo := pg.NewGiftRepo(pool)
	existing, err := giftRepo.ListActive(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list gifts: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d gifts already present. No changes.\n", len(existing))
		return
	}

	seed := []*model.Gift{
		{ID: "gift-tv-55", Name: "55\" TV", Tier: model.TierPremium, TotalCount: 3},
		{ID: "gift-vacuum", Name: "Robot vacuum", Tier: model.TierStandard, TotalCount: 10},
		{ID: "gift-blender", Name: "Blender", Tier: model.TierEconomy, TotalCount: 40},
		{ID: "gift-mug", Name: "Branded mug", Tier: model.TierSymbolic, TotalCount: 200},
	}
	for _, g := range seed {
		if err := giftRepo.Save(ctx, repository.NoTX, g); err != nil {
			log.Fatalf("seed gift %q: %v", g.Name, err)
		}
		fmt.Printf("seeded gift: %s (tier=%s, total=%d)\n", g.Name, g.Tier, g.TotalCount)
	}

	fmt.Println("seeding complete.")
}
