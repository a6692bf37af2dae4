package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"telegram-promo-campaign/internal/domain"
)

// User is the external participant entity referenced by claims and attempts.
type User struct {
	ID           string
	TelegramID   int64
	TgFirstName  string
	TgLastName   string
	FirstName    string
	PhoneNumber  string
	Lang         string
	RegisteredAt time.Time
	LastActiveAt time.Time
}

// NewUser creates a user for a first-seen Telegram account.
func NewUser(tgID int64, tgFirstName, tgLastName string, now time.Time) *User {
	return &User{
		ID:           uuid.NewString(),
		TelegramID:   tgID,
		TgFirstName:  tgFirstName,
		TgLastName:   tgLastName,
		Lang:         "uz",
		RegisteredAt: now,
		LastActiveAt: now,
	}
}

var phonePattern = regexp.MustCompile(`^[0-9]{9,15}$`)

// NormalizePhone strips a leading plus sign and validates the remainder.
func NormalizePhone(s string) (string, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	if !phonePattern.MatchString(s) {
		return "", domain.ErrInvalidPhoneNumber
	}
	return s, nil
}
