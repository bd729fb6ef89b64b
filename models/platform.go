// models/platform.go
package models

import (
	"time"
)

// PlatformState is a single-row table holding the emergency-pause flag and
// the treasury / escrow account identities. Every mutating engine operation
// reads it inside its own transaction.
type PlatformState struct {
	ID         int    `json:"id" gorm:"primaryKey"` // always 1
	Paused     bool   `json:"paused" gorm:"default:false"`
	TreasuryID string `json:"treasury_id" gorm:"not null"`
	EscrowID   string `json:"escrow_id" gorm:"not null"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
