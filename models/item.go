// models/item.go
package models

import (
	"time"
)

// ItemCategory partitions items into ownership semantics: consumables carry a
// depletable quantity, every other category is at most one unit per player.
type ItemCategory string

const (
	CategoryCosmetic     ItemCategory = "cosmetic"
	CategoryConsumable   ItemCategory = "consumable"
	CategoryPowerUp      ItemCategory = "powerup"
	CategoryAccess       ItemCategory = "access"
	CategorySubscription ItemCategory = "subscription"
)

// ValidCategory reports whether c is one of the five known categories.
func ValidCategory(c ItemCategory) bool {
	switch c {
	case CategoryCosmetic, CategoryConsumable, CategoryPowerUp, CategoryAccess, CategorySubscription:
		return true
	}
	return false
}

// Item is a purchasable catalog entry under a game. IDs are globally unique
// (not scoped per game). MaxSupply 0 means unbounded.
type Item struct {
	ID            string       `json:"id" gorm:"primaryKey"`
	GameID        string       `json:"game_id" gorm:"not null;index"`
	CreatorID     string       `json:"creator_id" gorm:"not null;index"`
	Price         int64        `json:"price" gorm:"not null"` // smallest value unit, > 0
	MaxSupply     int64        `json:"max_supply" gorm:"default:0"`
	CurrentSupply int64        `json:"current_supply" gorm:"default:0"`
	Category      ItemCategory `json:"category" gorm:"type:varchar(16);not null"`
	Active        bool         `json:"active" gorm:"default:true"`
	ArtworkURL    string       `json:"artwork_url,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Ownership marks a non-consumable item as owned by a player. At most one
// row per (player, item); purchase sets it before any wallet credit goes out.
type Ownership struct {
	ID       string    `json:"id" gorm:"primaryKey"`
	PlayerID string    `json:"player_id" gorm:"not null;index;uniqueIndex:idx_player_item"`
	ItemID   string    `json:"item_id" gorm:"not null;index;uniqueIndex:idx_player_item"`
	GameID   string    `json:"game_id" gorm:"not null;index"`
	BoughtAt time.Time `json:"bought_at" gorm:"autoCreateTime"`
}

// ConsumableBalance tracks the remaining quantity of a consumable item per
// player. Incremented by purchase, decremented by use, never negative.
type ConsumableBalance struct {
	ID       string `json:"id" gorm:"primaryKey"`
	PlayerID string `json:"player_id" gorm:"not null;index;uniqueIndex:idx_player_consumable"`
	ItemID   string `json:"item_id" gorm:"not null;index;uniqueIndex:idx_player_consumable"`
	Quantity int64  `json:"quantity" gorm:"default:0"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
