package model

import "time"

// Gift is a physical prize associated with winning codes.
// UsedCount is maintained by a separate counting query after a claim and can
// transiently lag concurrent claims on the same gift.
type Gift struct {
	ID         string
	Name       string
	Tier       Tier
	TotalCount int
	UsedCount  int
	DeletedAt  *time.Time
}
