package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-promo-campaign/internal/application"
	"telegram-promo-campaign/internal/config"
	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
	"telegram-promo-campaign/internal/infra/i18n"
	"telegram-promo-campaign/internal/infra/logging"
	"telegram-promo-campaign/internal/infra/metrics"
	"telegram-promo-campaign/internal/infra/redis"
	"telegram-promo-campaign/internal/usecase"
)

// exportCleanupDelay is how long a generated export file stays on disk after
// it has been handed to Telegram.
const exportCleanupDelay = 3 * time.Second

// RealTelegramBotAdapter drives the campaign over tgbotapi long polling with
// a fixed pool of update workers.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	users       usecase.UserUseCase
	generate    usecase.GenerateUseCase
	settings    repository.SettingsRepository
	facade      *application.BotFacade
	bundle      *i18n.Bundle
	limiter     *redis.RateLimiter
	perMinute   int
	adminIDsMap map[int64]struct{}

	defaultPrefix string

	// updateWorkers is how many goroutines will concurrently process updates.
	updateWorkers int
	// cancelPolling cancels polling when called
	cancelPolling context.CancelFunc

	log *zerolog.Logger
}

// NewRealTelegramBotAdapter creates a new bot adapter. generate is required
// for the admin /generate command; limiter may be nil to disable throttling.
func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	users usecase.UserUseCase,
	generate usecase.GenerateUseCase,
	settings repository.SettingsRepository,
	facade *application.BotFacade,
	bundle *i18n.Bundle,
	limiter *redis.RateLimiter,
	perMinute int,
	defaultPrefix string,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if users == nil {
		return nil, errors.New("user usecase is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if bundle == nil {
		return nil, errors.New("i18n bundle is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	if perMinute <= 0 {
		perMinute = 20
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		users:         users,
		generate:      generate,
		settings:      settings,
		facade:        facade,
		bundle:        bundle,
		limiter:       limiter,
		perMinute:     perMinute,
		adminIDsMap:   adminMap,
		defaultPrefix: defaultPrefix,
		updateWorkers: workers,
		log:           logger,
	}, nil
}

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	// Start worker goroutines to process updates concurrently
	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, update); err != nil {
						r.log.Error().Err(err).Int("worker", workerID).Msg("handle update")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	// Dispatcher goroutine: feed updates into updateChan
	go func() {
		defer close(updateChan)
		for {
			select {
			case update := <-updates:
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	r.bot.StopReceivingUpdates()
	wg.Wait()
	return nil
}

// StopPolling stops the polling loop gracefully.
func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// handleUpdate processes a single Telegram update.
func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil {
		return nil
	}
	tgUser := update.Message.From
	if tgUser == nil {
		return nil
	}

	ctx = logging.WithTgID(ctx, tgUser.ID)
	log := logging.With(ctx, r.log)

	if r.limiter != nil {
		ok, err := r.limiter.Allow(ctx, redis.UserMessageKey(tgUser.ID), r.perMinute, time.Minute)
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable, allowing")
		} else if !ok {
			log.Debug().Msg("rate limited, dropping update")
			return nil
		}
	}

	user, created, err := r.users.RegisterOrFetch(ctx, tgUser.ID, tgUser.FirstName, tgUser.LastName)
	if err != nil {
		return fmt.Errorf("register or fetch user %d: %w", tgUser.ID, err)
	}
	ctx = logging.WithUserID(ctx, user.ID)

	text := update.Message.Text
	if update.Message.Contact != nil {
		text = update.Message.Contact.PhoneNumber
	}

	if len(text) > 0 && text[0] == '/' {
		return r.handleCommand(ctx, user, created, text)
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	reply, err := r.facade.HandleText(ctx, user, text)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("handle text")
		return r.sendReply(user, &application.Reply{Key: "error.generic"})
	}
	return r.sendReply(user, reply)
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, user *model.User, created bool, text string) error {
	fields := strings.Fields(strings.TrimSpace(text))
	switch fields[0] {
	case "/start":
		reply, err := r.facade.HandleStart(ctx, user, created)
		if err != nil {
			return err
		}
		return r.sendReply(user, reply)
	case "/lang":
		return r.handleLang(ctx, user, fields[1:])
	case "/generate":
		if !r.isAdmin(user.TelegramID) {
			return r.sendReply(user, &application.Reply{Key: "error.generic"})
		}
		return r.handleGenerate(ctx, user, fields[1:])
	case "/limit":
		if !r.isAdmin(user.TelegramID) {
			return r.sendReply(user, &application.Reply{Key: "error.generic"})
		}
		return r.handleLimit(ctx, user, fields[1:])
	default:
		return r.sendReply(user, &application.Reply{Key: "menu.main"})
	}
}

func (r *RealTelegramBotAdapter) handleLang(ctx context.Context, user *model.User, args []string) error {
	if len(args) != 1 {
		return r.sendText(user.TelegramID, "/lang uz|ru")
	}
	lang := strings.ToLower(args[0])
	if err := r.users.SetLang(ctx, user.ID, lang); err != nil {
		return r.sendReply(user, &application.Reply{Key: "error.generic"})
	}
	user.Lang = lang
	return r.sendReply(user, &application.Reply{Key: "menu.main"})
}

// handleGenerate runs the admin bulk-generation command. Accepted forms:
//
//	/generate 5000              one batch under the default prefix
//	/generate VS 5000 AB 200    explicit prefix/count pairs
func (r *RealTelegramBotAdapter) handleGenerate(ctx context.Context, user *model.User, args []string) error {
	reqs, err := r.parseGenerateArgs(args)
	if err != nil {
		return r.sendText(user.TelegramID, "Usage: /generate <count> or /generate <PREFIX> <count> [<PREFIX> <count> ...]")
	}

	res, err := r.generate.Generate(ctx, reqs)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", user.TelegramID).Msg("generate batch")
		return r.sendText(user.TelegramID, fmt.Sprintf("Generation failed: %v", err))
	}

	if err := r.sendText(user.TelegramID, fmt.Sprintf("Generated %d codes (ids %d..%d).", res.Total, res.FirstID, res.LastID)); err != nil {
		r.log.Warn().Err(err).Msg("send generation summary")
	}
	for _, f := range res.Files {
		r.deliverExport(user.TelegramID, f)
	}
	return nil
}

func (r *RealTelegramBotAdapter) parseGenerateArgs(args []string) ([]usecase.PrefixRequest, error) {
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("bad count %q", args[0])
		}
		return []usecase.PrefixRequest{{Prefix: r.defaultPrefix, Count: n}}, nil
	}
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, errors.New("expected prefix/count pairs")
	}
	reqs := make([]usecase.PrefixRequest, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		n, err := strconv.Atoi(args[i+1])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("bad count %q", args[i+1])
		}
		reqs = append(reqs, usecase.PrefixRequest{Prefix: strings.ToUpper(args[i]), Count: n})
	}
	return reqs, nil
}

// deliverExport uploads one export file and schedules its removal. The file
// is deleted after the delay whether or not the upload succeeded.
func (r *RealTelegramBotAdapter) deliverExport(tgID int64, f usecase.ExportFile) {
	doc := tgbotapi.NewDocument(tgID, tgbotapi.FilePath(f.Path))
	doc.Caption = fmt.Sprintf("%s: %d codes", f.Prefix, f.Rows)
	if _, err := r.bot.Send(doc); err != nil {
		r.log.Error().Err(err).Str("path", f.Path).Msg("deliver export file")
		metrics.IncDeliveryFailure()
	}
	path := f.Path
	time.AfterFunc(exportCleanupDelay, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.log.Warn().Err(err).Str("path", path).Msg("remove export file")
		}
	})
}

func (r *RealTelegramBotAdapter) handleLimit(ctx context.Context, user *model.User, args []string) error {
	if r.settings == nil || len(args) != 1 {
		return r.sendText(user.TelegramID, "Usage: /limit off | /limit <max-per-user>")
	}
	setting := &model.UsageLimitSetting{UpdatedAt: time.Now()}
	if strings.EqualFold(args[0], "off") {
		setting.Enabled = false
	} else {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return r.sendText(user.TelegramID, "Usage: /limit off | /limit <max-per-user>")
		}
		setting.Enabled = true
		setting.MaxPerUser = n
	}
	if err := r.settings.SaveUsageLimit(ctx, repository.NoTX, setting); err != nil {
		return r.sendText(user.TelegramID, fmt.Sprintf("Saving limit failed: %v", err))
	}
	if setting.Enabled {
		return r.sendText(user.TelegramID, fmt.Sprintf("Usage limit set to %d per user.", setting.MaxPerUser))
	}
	return r.sendText(user.TelegramID, "Usage limit disabled.")
}

// sendReply renders a facade reply in the user's locale and sends it.
func (r *RealTelegramBotAdapter) sendReply(user *model.User, reply *application.Reply) error {
	tr := r.bundle.For(user.Lang)
	msg := tgbotapi.NewMessage(user.TelegramID, tr.T(reply.Key))
	if reply.RequestContact {
		btn := tgbotapi.NewKeyboardButtonContact(tr.T("auth.sendContact"))
		kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(btn))
		kb.OneTimeKeyboard = true
		msg.ReplyMarkup = kb
	} else if reply.RemoveKeyboard {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) sendText(tgID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(tgID, text))
	return err
}

func (r *RealTelegramBotAdapter) isAdmin(tgID int64) bool {
	_, ok := r.adminIDsMap[tgID]
	return ok
}
