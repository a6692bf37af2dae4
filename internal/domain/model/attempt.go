package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// RedemptionAttempt is an immutable audit fact: one row per inbound candidate
// text, regardless of outcome. Never updated, never deleted.
type RedemptionAttempt struct {
	ID        string
	RawText   string
	CodeID    *int64
	UserID    string
	CreatedAt time.Time
}

// NewRedemptionAttempt stamps an attempt with a time-ordered ULID so the
// append-only log stays naturally sorted by insertion.
func NewRedemptionAttempt(rawText string, codeID *int64, userID string, at time.Time) *RedemptionAttempt {
	return &RedemptionAttempt{
		ID:        ulid.MustNew(ulid.Timestamp(at), rand.Reader).String(),
		RawText:   rawText,
		CodeID:    codeID,
		UserID:    userID,
		CreatedAt: at,
	}
}
