package repository

import "context"

// RegistrationStep is where a participant stands in the two-step sign-up
// conversation. Free text outside a step is treated as a code submission.
type RegistrationStep string

const (
	StepName  RegistrationStep = "REGISTER_NAME"
	StepPhone RegistrationStep = "REGISTER_PHONE_NUMBER"
)

// RegistrationState is the transient conversation state kept per Telegram
// account while the sign-up flow is in progress.
type RegistrationState struct {
	Step RegistrationStep `json:"step"`
}

// RegistrationStateRepository stores conversation state with a TTL so an
// abandoned sign-up expires on its own.
type RegistrationStateRepository interface {
	SetState(ctx context.Context, tgID int64, state *RegistrationState) error
	// GetState returns domain.ErrNotFound when no flow is in progress.
	GetState(ctx context.Context, tgID int64) (*RegistrationState, error)
	ClearState(ctx context.Context, tgID int64) error
}
