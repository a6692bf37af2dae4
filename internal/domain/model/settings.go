package model

import "time"

// UsageLimitSetting is the singleton operational toggle for the per-user
// redemption cap. It is read fresh on every evaluation, never cached, so a
// dashboard change takes effect on the next inbound message.
type UsageLimitSetting struct {
	Enabled    bool
	MaxPerUser int
	UpdatedAt  time.Time
}
