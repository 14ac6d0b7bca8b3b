package domain

import "time"

// Idempotency records the resource produced by a create request, keyed by
// (scope, key). Replaying the same Idempotency-Key within the TTL returns the
// recorded resource instead of creating a second one.
//
// Scope is the collection the key applies to ("questions" or "answers").
type Idempotency struct {
	ID         string    `gorm:"type:varchar(36);primaryKey"`
	Scope      string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_idem_scope_key,priority:1"`
	Key        string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_idem_scope_key,priority:2"`
	ResourceID int32     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
