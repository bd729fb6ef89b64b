package models

import (
	"time"
)

type TournamentType string

const (
	TournamentPlatformSponsored  TournamentType = "platform"
	TournamentCreatorSponsored   TournamentType = "creator"
	TournamentCommunitySponsored TournamentType = "community"
)

type TournamentStatus string

// Status transitions are one-directional: registration → active →
// completed; cancellation is reachable from registration or active.
const (
	TournamentRegistration TournamentStatus = "registration"
	TournamentActive       TournamentStatus = "active"
	TournamentCompleted    TournamentStatus = "completed"
	TournamentCancelled    TournamentStatus = "cancelled"
)

// Tournament holds the escrowed prize pool and the registration window for a
// single competition. PrizePool and AccruedEntryFees together must equal the
// value actually held in escrow for this tournament at all times.
type Tournament struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	GameID    string           `json:"game_id" gorm:"not null;index"`
	SponsorID string           `json:"sponsor_id" gorm:"not null;index"`
	Type      TournamentType   `json:"type" gorm:"type:varchar(16);not null"`
	Status    TournamentStatus `json:"status" gorm:"type:varchar(16);default:'registration'"`

	PrizePool           int64 `json:"prize_pool" gorm:"default:0"`
	EntryFee            int64 `json:"entry_fee" gorm:"default:0"`
	AccruedEntryFees    int64 `json:"accrued_entry_fees" gorm:"default:0"`
	MaxParticipants     int   `json:"max_participants" gorm:"not null"`
	CurrentParticipants int   `json:"current_participants" gorm:"default:0"`

	RegistrationStart time.Time `json:"registration_start" gorm:"not null"`
	RegistrationEnd   time.Time `json:"registration_end" gorm:"not null"`
	StartTime         time.Time `json:"start_time" gorm:"not null"`

	// Prize distribution, percentages summing to exactly 100. Mutable only
	// while in registration, by the sponsor or a platform admin.
	FirstPct         int `json:"first_pct" gorm:"default:50"`
	SecondPct        int `json:"second_pct" gorm:"default:25"`
	ThirdPct         int `json:"third_pct" gorm:"default:15"`
	ParticipationPct int `json:"participation_pct" gorm:"default:10"`

	// Winners, populated only on completion.
	FirstPlaceID  string `json:"first_place_id,omitempty"`
	SecondPlaceID string `json:"second_place_id,omitempty"`
	ThirdPlaceID  string `json:"third_place_id,omitempty"`

	CancelReason string `json:"cancel_reason,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:TournamentID"`
}

// Distribution is the read-model for the four-way percentage split.
type Distribution struct {
	First         int `json:"first"`
	Second        int `json:"second"`
	Third         int `json:"third"`
	Participation int `json:"participation"`
}

// Distribution returns the tournament's current percentage split.
func (t *Tournament) Distribution() Distribution {
	return Distribution{
		First:         t.FirstPct,
		Second:        t.SecondPct,
		Third:         t.ThirdPct,
		Participation: t.ParticipationPct,
	}
}

// Participant records one player's registration and the exact fee they paid
// into escrow. Written once at registration, mutated only by refund.
type Participant struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	TournamentID string    `json:"tournament_id" gorm:"not null;index;uniqueIndex:idx_tournament_player"`
	PlayerID     string    `json:"player_id" gorm:"not null;index;uniqueIndex:idx_tournament_player"`
	EntryFeePaid int64     `json:"entry_fee_paid" gorm:"default:0"`
	Refunded     bool      `json:"refunded" gorm:"default:false"`
	RegisteredAt time.Time `json:"registered_at" gorm:"autoCreateTime"`
}
