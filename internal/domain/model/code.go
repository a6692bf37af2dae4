package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Code is a single-use campaign token. Rows are created by a generation batch
// or, for manifest winners that were never seeded, at first valid redemption.
// A row is never hard-deleted; DeletedAt marks it invisible to every query.
type Code struct {
	ID          int64
	Value       string
	Version     int
	GiftID      *string
	IsUsed      bool
	UsedByID    *string
	UsedAt      *time.Time
	GiftGivenAt *time.Time
	GiftGivenBy *string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// ClaimedBy reports whether the code is claimed and, if so, by this user.
func (c *Code) ClaimedBy(userID string) bool {
	return c.IsUsed && c.UsedByID != nil && *c.UsedByID == userID
}

// valuePattern is the canonical code format: 2-letter campaign prefix,
// 4 uppercase letters, hyphen, 4 digits.
var valuePattern = regexp.MustCompile(`^[A-Z]{2}[A-Z]{4}-[0-9]{4}$`)

// ValidValue reports whether s is a well-formed canonical code value.
func ValidValue(s string) bool { return valuePattern.MatchString(s) }

// NormalizeValue trims and uppercases raw inbound text.
func NormalizeValue(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Hyphenize inserts a hyphen after the 6th character of an unhyphenated
// value. Values that already contain a hyphen, or are too short to split,
// pass through unchanged. The split counts runes, not bytes: inbound free
// text is arbitrary (Cyrillic included) and must stay valid UTF-8.
func Hyphenize(s string) string {
	if strings.Contains(s, "-") {
		return s
	}
	r := []rune(s)
	if len(r) > 6 {
		return string(r[:6]) + "-" + string(r[6:])
	}
	return s
}

// CanonicalValue is the form used for manifest resolution and storage.
func CanonicalValue(raw string) string {
	return Hyphenize(NormalizeValue(raw))
}

// CandidateValues maps raw inbound text to the ordered, deduplicated set of
// forms compared against stored values: the raw text as typed, its normalized
// form, and the normalized form with a hyphen restored.
func CandidateValues(raw string) []string {
	norm := NormalizeValue(raw)
	out := make([]string, 0, 3)
	seen := make(map[string]struct{}, 3)
	for _, cand := range []string{raw, norm, Hyphenize(norm)} {
		if cand == "" {
			continue
		}
		if _, ok := seen[cand]; ok {
			continue
		}
		seen[cand] = struct{}{}
		out = append(out, cand)
	}
	return out
}

const claimTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatClaimTime renders a claim timestamp the way rows store it: an
// ISO-8601 string in UTC.
func FormatClaimTime(t time.Time) string {
	return t.UTC().Format(claimTimeLayout)
}

// ParseClaimTime accepts the two historical encodings of used_at: a decimal
// epoch-millisecond value written by early generation batches, and the
// ISO-8601 string written by the claim transition. The result is UTC.
func ParseClaimTime(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

const dayMillis = 86_400_000

// DayBucket collapses a timestamp to the epoch-millisecond start of its UTC
// calendar day.
func DayBucket(t time.Time) int64 {
	ms := t.UnixMilli()
	return ms / dayMillis * dayMillis
}
