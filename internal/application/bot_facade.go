package application

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"telegram-promo-campaign/internal/domain"
	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
	"telegram-promo-campaign/internal/usecase"
)

// Reply is the outcome of handling one inbound message: a template key for
// the transport to render in the user's locale, plus hints for reply markup.
type Reply struct {
	Key string
	// RequestContact asks the transport to show the share-contact keyboard.
	RequestContact bool
	// RemoveKeyboard clears any previous reply keyboard.
	RemoveKeyboard bool
}

// BotFacade routes inbound Telegram text: accounts in a registration step go
// through the sign-up flow, everyone else's free text is a code submission.
type BotFacade struct {
	users  usecase.UserUseCase
	redeem usecase.RedeemUseCase
	states repository.RegistrationStateRepository

	log *zerolog.Logger
}

func NewBotFacade(
	users usecase.UserUseCase,
	redeem usecase.RedeemUseCase,
	states repository.RegistrationStateRepository,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{users: users, redeem: redeem, states: states, log: logger}
}

// HandleStart greets a participant. First contact begins the sign-up flow.
func (f *BotFacade) HandleStart(ctx context.Context, user *model.User, isNew bool) (*Reply, error) {
	if isNew || user.FirstName == "" {
		if err := f.states.SetState(ctx, user.TelegramID, &repository.RegistrationState{Step: repository.StepName}); err != nil {
			return nil, err
		}
		return &Reply{Key: "auth.requestName"}, nil
	}
	return &Reply{Key: "menu.main"}, nil
}

// HandleText processes one free-text (or contact) message.
func (f *BotFacade) HandleText(ctx context.Context, user *model.User, text string) (*Reply, error) {
	state, err := f.states.GetState(ctx, user.TelegramID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if state != nil {
		return f.handleRegistrationStep(ctx, user, state.Step, text)
	}
	return f.handleCode(ctx, user, text)
}

func (f *BotFacade) handleRegistrationStep(ctx context.Context, user *model.User, step repository.RegistrationStep, text string) (*Reply, error) {
	switch step {
	case repository.StepName:
		if err := f.users.SetName(ctx, user.ID, text); err != nil {
			return nil, err
		}
		if err := f.states.SetState(ctx, user.TelegramID, &repository.RegistrationState{Step: repository.StepPhone}); err != nil {
			return nil, err
		}
		return &Reply{Key: "auth.requestPhoneNumber", RequestContact: true}, nil

	case repository.StepPhone:
		if err := f.users.SetPhone(ctx, user.ID, text); err != nil {
			if errors.Is(err, domain.ErrInvalidPhoneNumber) {
				return &Reply{Key: "validation.invalidPhoneNumber", RequestContact: true}, nil
			}
			return nil, err
		}
		if err := f.states.ClearState(ctx, user.TelegramID); err != nil {
			f.log.Warn().Err(err).Int64("tg_id", user.TelegramID).Msg("clear registration state failed")
		}
		return &Reply{Key: "menu.main", RemoveKeyboard: true}, nil

	default:
		// Unknown stale state: drop it and treat the text as a code.
		_ = f.states.ClearState(ctx, user.TelegramID)
		return f.handleCode(ctx, user, text)
	}
}

func (f *BotFacade) handleCode(ctx context.Context, user *model.User, text string) (*Reply, error) {
	outcome, err := f.redeem.Redeem(ctx, user.ID, text)
	if err != nil {
		return nil, err
	}
	return &Reply{Key: OutcomeKey(outcome)}, nil
}

// OutcomeKey maps a redemption outcome to its message template key.
// A winning claim with a physical gift gets the tier-specific template;
// a gift-less winner gets the plain success template.
func OutcomeKey(o *model.Outcome) string {
	switch o.Kind {
	case model.OutcomeFake:
		return "code.fake"
	case model.OutcomeAlreadyUsed:
		return "code.used"
	case model.OutcomeLimitReached:
		return "code.limit"
	case model.OutcomeSuccess:
		if o.GiftID != nil && o.Tier != "" {
			return "code.gift." + string(o.Tier)
		}
		return "code.real"
	default:
		return "error.generic"
	}
}
