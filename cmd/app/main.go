package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-promo-campaign/internal/application"
	"telegram-promo-campaign/internal/config"
	"telegram-promo-campaign/internal/domain/model"
	pg "telegram-promo-campaign/internal/infra/db/postgres"
	"telegram-promo-campaign/internal/infra/i18n"
	"telegram-promo-campaign/internal/infra/logging"
	"telegram-promo-campaign/internal/infra/metrics"
	red "telegram-promo-campaign/internal/infra/redis"
	tele "telegram-promo-campaign/internal/infra/telegram"
	"telegram-promo-campaign/internal/infra/web"
	"telegram-promo-campaign/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, verbose)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Winner manifest ----
	manifest, err := model.LoadTierManifest(cfg.Campaign.ManifestPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Campaign.ManifestPath).Msg("load winner manifest")
	}
	logger.Info().Int("winners", manifest.Size()).Msg("winner manifest loaded")

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	stateRepo := red.NewRegistrationStateRepo(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	codeRepo := pg.NewCodeRepo(pool)
	attemptRepo := pg.NewAttemptRepo(pool)
	giftRepo := pg.NewGiftRepo(pool)
	settingsRepo := pg.NewSettingsRepo(pool)
	userRepo := pg.NewUserRepo(pool)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, logger)
	redeemUC := usecase.NewRedeemUseCase(codeRepo, attemptRepo, giftRepo, settingsRepo, manifest, logger)
	generateUC := usecase.NewGenerateUseCase(codeRepo, cfg.Campaign.ExportDir, cfg.Campaign.MaxGenerate, cfg.Campaign.RetryBudget, logger)
	analyticsUC := usecase.NewAnalyticsUseCase(codeRepo, giftRepo, logger)

	// ---- i18n ----
	bundle, err := i18n.NewBundle(i18n.LocalesFS, "uz", "ru")
	if err != nil {
		logger.Fatal().Err(err).Msg("load locales")
	}

	// ---- Facade ----
	facade := application.NewBotFacade(userUC, redeemUC, stateRepo, logger)

	// ---- Telegram ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(
		&cfg.Bot, userUC, generateUC, settingsRepo, facade, bundle,
		rateLimiter, cfg.RateLimit.PerUserPerMinute, cfg.Campaign.DefaultPrefix, logger,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram adapter")
	}
	if strings.ToLower(cfg.Bot.Mode) != "" && strings.ToLower(cfg.Bot.Mode) != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Admin API ----
	adminSrv := web.NewServer(codeRepo, userRepo, giftRepo, txManager, analyticsUC, cfg.Admin.APIKey, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: adminSrv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin api server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	botAdapter.StopPolling()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("admin api shutdown")
	}
	cancel()
}
