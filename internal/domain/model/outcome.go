package model

// OutcomeKind classifies the result of one redemption attempt. These are
// business outcomes, not errors; only infrastructure failures surface as
// Go errors from the engine.
type OutcomeKind string

const (
	// OutcomeFake: the value resolves to no tier; nothing was mutated.
	OutcomeFake OutcomeKind = "fake"
	// OutcomeAlreadyUsed: the code is claimed by a different user.
	OutcomeAlreadyUsed OutcomeKind = "already-used"
	// OutcomeLimitReached: the per-user cap denied the attempt.
	OutcomeLimitReached OutcomeKind = "limit-reached"
	// OutcomeSuccess: the code is claimed by this user (first claim or an
	// idempotent re-submission).
	OutcomeSuccess OutcomeKind = "success"
)

// Outcome is what the redemption engine hands back for rendering. Tier and
// GiftID are populated only on success; GiftID stays nil for winners that
// were lazily issued or carry no physical prize.
type Outcome struct {
	Kind   OutcomeKind
	Tier   Tier
	GiftID *string
	CodeID *int64
}
