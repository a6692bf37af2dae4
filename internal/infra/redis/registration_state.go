package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-promo-campaign/internal/domain"
	"telegram-promo-campaign/internal/domain/ports/repository"
)

// Ensure the adapter implements the port interface.
var _ repository.RegistrationStateRepository = (*RegistrationStateRepo)(nil)

// RegistrationStateRepo keeps the sign-up conversation step per Telegram
// account, with a TTL so abandoned flows expire on their own.
type RegistrationStateRepo struct {
	client Client
	ttl    time.Duration
}

func NewRegistrationStateRepo(client Client, ttl time.Duration) *RegistrationStateRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RegistrationStateRepo{client: client, ttl: ttl}
}

func stateKey(tgID int64) string {
	return fmt.Sprintf("reg_state:%d", tgID)
}

func (s *RegistrationStateRepo) SetState(ctx context.Context, tgID int64, state *repository.RegistrationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, stateKey(tgID), data, s.ttl)
}

func (s *RegistrationStateRepo) GetState(ctx context.Context, tgID int64) (*repository.RegistrationState, error) {
	data, err := s.client.Get(ctx, stateKey(tgID))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var state repository.RegistrationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RegistrationStateRepo) ClearState(ctx context.Context, tgID int64) error {
	return s.client.Del(ctx, stateKey(tgID))
}
