// models/game.go
package models

import (
	"time"
)

// Game is a creator-published catalog entry. The ID is chosen by the creator
// at publish time and is immutable; games are never deleted, only deactivated.
type Game struct {
	ID        string `json:"id" gorm:"primaryKey"`
	CreatorID string `json:"creator_id" gorm:"not null;index"`
	Active    bool   `json:"active" gorm:"default:true"`

	// Cumulative counters, smallest value unit. Only purchases update these.
	TotalRevenue    int64 `json:"total_revenue" gorm:"default:0"`
	CreatorEarnings int64 `json:"creator_earnings" gorm:"default:0"`

	ArtworkURL string `json:"artwork_url,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Items []Item `json:"items,omitempty" gorm:"foreignKey:GameID"`
}
