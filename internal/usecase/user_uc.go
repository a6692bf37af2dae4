package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"telegram-promo-campaign/internal/domain"
	"telegram-promo-campaign/internal/domain/model"
	"telegram-promo-campaign/internal/domain/ports/repository"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase manages participant accounts and the two-step sign-up flow.
type UserUseCase interface {
	// RegisterOrFetch returns the account for a Telegram id, creating it on
	// first contact. The second return reports whether it was just created.
	RegisterOrFetch(ctx context.Context, tgID int64, tgFirstName, tgLastName string) (*model.User, bool, error)
	SetName(ctx context.Context, userID, name string) error
	// SetPhone validates and normalizes; returns domain.ErrInvalidPhoneNumber.
	SetPhone(ctx context.Context, userID, rawPhone string) error
	SetLang(ctx context.Context, userID, lang string) error
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, log: logger}
}

func (u *userUC) RegisterOrFetch(ctx context.Context, tgID int64, tgFirstName, tgLastName string) (*model.User, bool, error) {
	now := time.Now()
	existing, err := u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if err == nil {
		existing.LastActiveAt = now
		if err := u.users.Save(ctx, repository.NoTX, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	user := model.NewUser(tgID, tgFirstName, tgLastName, now)
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, false, err
	}
	u.log.Info().Int64("tg_id", tgID).Str("user_id", user.ID).Msg("new participant registered")
	return user, true, nil
}

func (u *userUC) SetName(ctx context.Context, userID, name string) error {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return err
	}
	user.FirstName = name
	return u.users.Save(ctx, repository.NoTX, user)
}

func (u *userUC) SetPhone(ctx context.Context, userID, rawPhone string) error {
	phone, err := model.NormalizePhone(rawPhone)
	if err != nil {
		return err
	}
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return err
	}
	user.PhoneNumber = phone
	return u.users.Save(ctx, repository.NoTX, user)
}

func (u *userUC) SetLang(ctx context.Context, userID, lang string) error {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return err
	}
	user.Lang = lang
	return u.users.Save(ctx, repository.NoTX, user)
}
