// models/event.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event kinds. The payload field set per kind is part of the compatibility
// surface for downstream indexers; see services.appendEvent call sites.
const (
	EventGamePublished   = "GamePublished"
	EventGameDeactivated = "GameDeactivated"
	EventItemCreated     = "ItemCreated"
	EventItemPurchased   = "ItemPurchased"
	EventCreatorPaid     = "CreatorPaid"
	EventTreasuryFunded  = "TreasuryFunded"

	EventTournamentCreated     = "TournamentCreated"
	EventParticipantRegistered = "ParticipantRegistered"
	EventPoolContributed       = "PoolContributed"
	EventTournamentStarted     = "TournamentStarted"
	EventPrizeDistributed      = "PrizeDistributed"
	EventParticipationReward   = "ParticipationRewardDistributed"
	EventTournamentCompleted   = "TournamentCompleted"
	EventRefundIssued          = "RefundIssued"
	EventTournamentCancelled   = "TournamentCancelled"

	EventPlatformPaused   = "PlatformPaused"
	EventPlatformUnpaused = "PlatformUnpaused"
	EventTreasuryRotated  = "TreasuryRotated"
)

// Event is an append-only structured record consumed by off-platform
// indexers. Rows are inserted in the same transaction as the mutation they
// describe and are never updated or deleted.
type Event struct {
	Seq         int64          `json:"seq" gorm:"primaryKey;autoIncrement"` // insertion order; EmittedAt alone cannot break ties
	ID          string         `json:"id" gorm:"type:uuid;uniqueIndex;not null"`
	Kind        string         `json:"kind" gorm:"type:varchar(48);not null;index"`
	AggregateID string         `json:"aggregate_id" gorm:"index"` // game, item or tournament id
	Payload     datatypes.JSON `json:"payload"`
	EmittedAt   time.Time      `json:"emitted_at" gorm:"index"`
}
