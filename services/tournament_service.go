// services/tournament_service.go
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"game-ledger-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Default prize distribution seeded at creation: 50/25/15/10.
const (
	defaultFirstPct         = 50
	defaultSecondPct        = 25
	defaultThirdPct         = 15
	defaultParticipationPct = 10
)

type TournamentService struct {
	*Ledger
}

func NewTournamentService(l *Ledger) *TournamentService {
	return &TournamentService{Ledger: l}
}

// TournamentParams carries the caller-supplied fields shared by all three
// creation variants.
type TournamentParams struct {
	ID                string
	GameID            string
	PrizePool         int64
	EntryFee          int64
	MaxParticipants   int
	RegistrationStart time.Time
	RegistrationEnd   time.Time
	StartTime         time.Time
}

// CreatePlatformTournament creates a platform-sponsored tournament. Admin
// only; the sponsor is fixed to the platform treasury, which funds the pool.
func (s *TournamentService) CreatePlatformTournament(ctx context.Context, p TournamentParams, caller string, admin bool) (*models.Tournament, error) {
	if !admin {
		return nil, ErrNotAuthorized
	}
	if p.PrizePool <= 0 {
		return nil, ErrAmountNotPositive
	}
	return s.create(ctx, p, models.TournamentPlatformSponsored, "")
}

// CreateCreatorTournament creates a creator-sponsored tournament; the caller
// funds the prize pool upfront by debit into escrow.
func (s *TournamentService) CreateCreatorTournament(ctx context.Context, p TournamentParams, caller string) (*models.Tournament, error) {
	if p.PrizePool <= 0 {
		return nil, ErrAmountNotPositive
	}
	return s.create(ctx, p, models.TournamentCreatorSponsored, caller)
}

// CreateCommunityTournament creates a community tournament; it may start with
// an empty pool, which entry fees and top-ups then grow.
func (s *TournamentService) CreateCommunityTournament(ctx context.Context, p TournamentParams, caller string) (*models.Tournament, error) {
	if p.PrizePool < 0 {
		return nil, ErrAmountNotPositive
	}
	return s.create(ctx, p, models.TournamentCommunitySponsored, caller)
}

// create validates the shared parameters, escrows the sponsor's pool and
// seeds the default distribution. sponsor == "" means platform-sponsored and
// is resolved to the treasury identity inside the transaction.
func (s *TournamentService) create(ctx context.Context, p TournamentParams, typ models.TournamentType, sponsor string) (*models.Tournament, error) {
	s.lock()
	defer s.unlock()

	if p.ID == "" {
		return nil, ErrInvalidID
	}
	if p.MaxParticipants < 2 {
		return nil, ErrNeedAtLeastTwoParticipants
	}
	if !p.RegistrationStart.Before(p.RegistrationEnd) {
		return nil, ErrInvalidRegistrationPeriod
	}
	if p.RegistrationEnd.After(p.StartTime) {
		return nil, ErrRegistrationBeforeStart
	}
	if p.EntryFee < 0 {
		return nil, ErrAmountNotPositive
	}

	var t *models.Tournament
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		st, err := s.requireUnpaused(tx)
		if err != nil {
			return err
		}
		var existing models.Tournament
		if err := tx.First(&existing, "id = ?", p.ID).Error; err == nil {
			return ErrTournamentExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		var game models.Game
		if err := tx.First(&game, "id = ?", p.GameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGameNotFound
			}
			return err
		}
		if sponsor == "" {
			sponsor = st.TreasuryID
		}
		t = &models.Tournament{
			ID:                p.ID,
			GameID:            p.GameID,
			SponsorID:         sponsor,
			Type:              typ,
			Status:            models.TournamentRegistration,
			PrizePool:         p.PrizePool,
			EntryFee:          p.EntryFee,
			MaxParticipants:   p.MaxParticipants,
			RegistrationStart: p.RegistrationStart,
			RegistrationEnd:   p.RegistrationEnd,
			StartTime:         p.StartTime,
			FirstPct:          defaultFirstPct,
			SecondPct:         defaultSecondPct,
			ThirdPct:          defaultThirdPct,
			ParticipationPct:  defaultParticipationPct,
		}
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		now := s.Clock.Now()
		if err := appendEvent(tx, now, models.EventTournamentCreated, p.ID, map[string]interface{}{
			"tournamentId":    p.ID,
			"gameId":          p.GameID,
			"sponsor":         sponsor,
			"type":            string(typ),
			"prizePool":       p.PrizePool,
			"entryFee":        p.EntryFee,
			"maxParticipants": p.MaxParticipants,
		}); err != nil {
			return err
		}
		if p.PrizePool > 0 {
			if err := s.Wallet.Debit(ctx, sponsor, p.PrizePool); err != nil {
				log.Printf("tournament %s: sponsor %s could not fund pool of %d: %v", p.ID, sponsor, p.PrizePool, err)
				return ErrTransferFailed
			}
			if err := s.Wallet.Credit(ctx, st.EscrowID, p.PrizePool); err != nil {
				return ErrTransferFailed
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// SetDistribution replaces the four-way percentage split. Sponsor or admin
// only, and only while registration is open.
func (s *TournamentService) SetDistribution(ctx context.Context, id string, d models.Distribution, caller string, admin bool) error {
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireUnpaused(tx); err != nil {
			return err
		}
		t, err := s.loadTournament(tx, id)
		if err != nil {
			return err
		}
		if !admin && caller != t.SponsorID {
			return ErrNotAuthorized
		}
		if d.First < 0 || d.Second < 0 || d.Third < 0 || d.Participation < 0 ||
			d.First+d.Second+d.Third+d.Participation != 100 {
			return ErrMustTotal100
		}
		if t.Status != models.TournamentRegistration {
			return ErrCannotModify
		}
		return tx.Model(t).Updates(map[string]interface{}{
			"first_pct":         d.First,
			"second_pct":        d.Second,
			"third_pct":         d.Third,
			"participation_pct": d.Participation,
		}).Error
	})
}

// Register enrolls a player, debiting the entry fee into escrow. For
// community tournaments the fee joins the prize pool directly; otherwise it
// accrues separately and is only ever paid back out as a refund.
func (s *TournamentService) Register(ctx context.Context, id, player string) error {
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		st, err := s.requireUnpaused(tx)
		if err != nil {
			return err
		}
		t, err := s.loadTournament(tx, id)
		if err != nil {
			return err
		}
		if t.Status != models.TournamentRegistration {
			return ErrNotInRegistration
		}
		now := s.Clock.Now()
		if now.Before(t.RegistrationStart) {
			return ErrRegistrationNotOpen
		}
		if now.After(t.RegistrationEnd) {
			return ErrRegistrationClosed
		}
		if t.CurrentParticipants >= t.MaxParticipants {
			return ErrTournamentFull
		}
		var existing models.Participant
		if err := tx.First(&existing, "tournament_id = ? AND player_id = ?", id, player).Error; err == nil {
			return ErrAlreadyRegistered
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&models.Participant{
			ID:           uuid.NewString(),
			TournamentID: id,
			PlayerID:     player,
			EntryFeePaid: t.EntryFee,
			RegisteredAt: now,
		}).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"current_participants": gorm.Expr("current_participants + 1"),
		}
		if t.Type == models.TournamentCommunitySponsored {
			updates["prize_pool"] = gorm.Expr("prize_pool + ?", t.EntryFee)
		} else {
			updates["accrued_entry_fees"] = gorm.Expr("accrued_entry_fees + ?", t.EntryFee)
		}
		if err := tx.Model(t).Updates(updates).Error; err != nil {
			return err
		}
		if err := appendEvent(tx, now, models.EventParticipantRegistered, id, map[string]interface{}{
			"tournamentId": id,
			"player":       player,
			"entryFee":     t.EntryFee,
		}); err != nil {
			return err
		}
		if t.EntryFee > 0 {
			if err := s.Wallet.Debit(ctx, player, t.EntryFee); err != nil {
				log.Printf("tournament %s: player %s could not pay entry fee %d: %v", id, player, t.EntryFee, err)
				return ErrTransferFailed
			}
			if err := s.Wallet.Credit(ctx, st.EscrowID, t.EntryFee); err != nil {
				return ErrTransferFailed
			}
		}
		return nil
	})
}

// AddToPrizePool lets anyone grow the pool while registration is open.
// Contributor identity is recorded in the event log only; top-ups are
// donations and carry no refund claim.
func (s *TournamentService) AddToPrizePool(ctx context.Context, id string, amount int64, caller string) error {
	s.lock()
	defer s.unlock()

	if amount <= 0 {
		return ErrAmountNotPositive
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		st, err := s.requireUnpaused(tx)
		if err != nil {
			return err
		}
		t, err := s.loadTournament(tx, id)
		if err != nil {
			return err
		}
		if t.Status != models.TournamentRegistration {
			return ErrCannotAddToPool
		}
		if err := tx.Model(t).Update("prize_pool", gorm.Expr("prize_pool + ?", amount)).Error; err != nil {
			return err
		}
		if err := appendEvent(tx, s.Clock.Now(), models.EventPoolContributed, id, map[string]interface{}{
			"tournamentId": id,
			"contributor":  caller,
			"amount":       amount,
		}); err != nil {
			return err
		}
		if err := s.Wallet.Debit(ctx, caller, amount); err != nil {
			return ErrTransferFailed
		}
		if err := s.Wallet.Credit(ctx, st.EscrowID, amount); err != nil {
			return ErrTransferFailed
		}
		return nil
	})
}

// StartTournament moves registration → active once the start time has been
// reached and at least two players are in.
func (s *TournamentService) StartTournament(ctx context.Context, id, caller string, admin bool) error {
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireUnpaused(tx); err != nil {
			return err
		}
		t, err := s.loadTournament(tx, id)
		if err != nil {
			return err
		}
		if !admin && caller != t.SponsorID {
			return ErrNotAuthorized
		}
		if t.Status != models.TournamentRegistration {
			return ErrInvalidStatus
		}
		now := s.Clock.Now()
		if now.Before(t.StartTime) {
			return ErrNotStartTimeYet
		}
		if t.CurrentParticipants < 2 {
			return ErrNotEnoughParticipants
		}
		if err := tx.Model(t).Update("status", models.TournamentActive).Error; err != nil {
			return err
		}
		return appendEvent(tx, now, models.EventTournamentStarted, id, map[string]interface{}{
			"tournamentId": id,
			"participants": t.CurrentParticipants,
		})
	})
}

// CompleteTournament pays the prize pool out to three named winners and
// splits the leftover equally among the remaining participants. Division
// remainders ride on the first-place payout, so payouts always sum to the
// pool exactly.
func (s *TournamentService) CompleteTournament(ctx context.Context, id, first, second, third, caller string, admin bool) error {
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		st, err := s.requireUnpaused(tx)
		if err != nil {
			return err
		}
		t, err := s.loadTournament(tx, id)
		if err != nil {
			return err
		}
		if t.Status != models.TournamentActive {
			return ErrNotActive
		}
		if !admin && caller != t.SponsorID {
			return ErrNotAuthorized
		}
		if first == second || first == third || second == third {
			return ErrWinnersMustBeDistinct
		}
		var participants []models.Participant
		if err := tx.Where("tournament_id = ?", id).Order("registered_at ASC").Find(&participants).Error; err != nil {
			return err
		}
		registered := make(map[string]bool, len(participants))
		for _, p := range participants {
			registered[p.PlayerID] = true
		}
		if !registered[first] {
			return ErrFirstNotParticipant
		}
		if !registered[second] {
			return ErrSecondNotParticipant
		}
		if !registered[third] {
			return ErrThirdNotParticipant
		}

		firstPrize := t.PrizePool * int64(t.FirstPct) / 100
		secondPrize := t.PrizePool * int64(t.SecondPct) / 100
		thirdPrize := t.PrizePool * int64(t.ThirdPct) / 100
		participationPool := t.PrizePool - firstPrize - secondPrize - thirdPrize

		nonWinners := make([]string, 0, len(participants))
		for _, p := range participants {
			if p.PlayerID != first && p.PlayerID != second && p.PlayerID != third {
				nonWinners = append(nonWinners, p.PlayerID)
			}
		}
		var participationReward int64
		if n := int64(len(nonWinners)); n > 0 {
			participationReward = participationPool / n
			firstPrize += participationPool - participationReward*n
		} else {
			// Nobody to share the participation pool; it rides on first place.
			firstPrize += participationPool
		}

		now := s.Clock.Now()
		if err := tx.Model(t).Updates(map[string]interface{}{
			"status":          models.TournamentCompleted,
			"first_place_id":  first,
			"second_place_id": second,
			"third_place_id":  third,
		}).Error; err != nil {
			return err
		}

		type payout struct {
			account string
			amount  int64
			place   int // 0 = participation
		}
		payouts := []payout{
			{first, firstPrize, 1},
			{second, secondPrize, 2},
			{third, thirdPrize, 3},
		}
		for _, w := range payouts {
			if err := appendEvent(tx, now, models.EventPrizeDistributed, id, map[string]interface{}{
				"tournamentId": id,
				"winner":       w.account,
				"place":        w.place,
				"amount":       w.amount,
			}); err != nil {
				return err
			}
		}
		for _, p := range nonWinners {
			payouts = append(payouts, payout{p, participationReward, 0})
			if err := appendEvent(tx, now, models.EventParticipationReward, id, map[string]interface{}{
				"tournamentId": id,
				"participant":  p,
				"amount":       participationReward,
			}); err != nil {
				return err
			}
		}
		if err := appendEvent(tx, now, models.EventTournamentCompleted, id, map[string]interface{}{
			"tournamentId": id,
			"first":        first,
			"second":       second,
			"third":        third,
			"prizePool":    t.PrizePool,
		}); err != nil {
			return err
		}

		// Escrow settles: the full pool to the podium and the floor, and any
		// separately accrued entry fees back to the sponsor.
		for _, w := range payouts {
			if w.amount == 0 {
				continue
			}
			if err := s.Wallet.Debit(ctx, st.EscrowID, w.amount); err != nil {
				return ErrTransferFailed
			}
			if err := s.Wallet.Credit(ctx, w.account, w.amount); err != nil {
				return ErrTransferFailed
			}
		}
		if t.AccruedEntryFees > 0 {
			if err := s.Wallet.Debit(ctx, st.EscrowID, t.AccruedEntryFees); err != nil {
				return ErrTransferFailed
			}
			if err := s.Wallet.Credit(ctx, t.SponsorID, t.AccruedEntryFees); err != nil {
				return ErrTransferFailed
			}
			if err := tx.Model(t).Update("accrued_entry_fees", 0).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CancelTournament refunds every participant their exact entry fee and
// returns the residual pool to the sponsor. Valid from registration or
// active; completed tournaments cannot be cancelled.
func (s *TournamentService) CancelTournament(ctx context.Context, id, reason, caller string, admin bool) error {
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		st, err := s.requireUnpaused(tx)
		if err != nil {
			return err
		}
		t, err := s.loadTournament(tx, id)
		if err != nil {
			return err
		}
		if !admin && caller != t.SponsorID {
			return ErrNotAuthorized
		}
		if t.Status == models.TournamentCompleted || t.Status == models.TournamentCancelled {
			return ErrCannotCancel
		}
		var participants []models.Participant
		if err := tx.Where("tournament_id = ? AND refunded = ?", id, false).
			Order("registered_at ASC").Find(&participants).Error; err != nil {
			return err
		}

		now := s.Clock.Now()
		var totalRefunded int64
		for i := range participants {
			p := &participants[i]
			totalRefunded += p.EntryFeePaid
			if err := tx.Model(p).Update("refunded", true).Error; err != nil {
				return err
			}
			if err := appendEvent(tx, now, models.EventRefundIssued, id, map[string]interface{}{
				"tournamentId": id,
				"participant":  p.PlayerID,
				"amount":       p.EntryFeePaid,
			}); err != nil {
				return err
			}
		}

		// For community tournaments entry fees were pooled, so the sponsor
		// gets back whatever the refunds leave behind (seed + donations).
		sponsorRefund := t.PrizePool
		if t.Type == models.TournamentCommunitySponsored {
			sponsorRefund = t.PrizePool - totalRefunded
		}

		if err := tx.Model(t).Updates(map[string]interface{}{
			"status":        models.TournamentCancelled,
			"cancel_reason": reason,
		}).Error; err != nil {
			return err
		}
		if err := appendEvent(tx, now, models.EventTournamentCancelled, id, map[string]interface{}{
			"tournamentId": id,
			"reason":       reason,
			"refunded":     totalRefunded,
		}); err != nil {
			return err
		}

		for i := range participants {
			p := &participants[i]
			if p.EntryFeePaid == 0 {
				continue
			}
			if err := s.Wallet.Debit(ctx, st.EscrowID, p.EntryFeePaid); err != nil {
				return ErrTransferFailed
			}
			if err := s.Wallet.Credit(ctx, p.PlayerID, p.EntryFeePaid); err != nil {
				return ErrTransferFailed
			}
		}
		if sponsorRefund > 0 {
			if err := s.Wallet.Debit(ctx, st.EscrowID, sponsorRefund); err != nil {
				return ErrTransferFailed
			}
			if err := s.Wallet.Credit(ctx, t.SponsorID, sponsorRefund); err != nil {
				return ErrTransferFailed
			}
		}
		return nil
	})
}

// --- Read accessors ---

func (s *TournamentService) GetTournament(id string) (*models.Tournament, error) {
	return s.loadTournament(s.DB, id)
}

// GetParticipants lists registrations in registration order.
func (s *TournamentService) GetParticipants(id string) ([]models.Participant, error) {
	if _, err := s.loadTournament(s.DB, id); err != nil {
		return nil, err
	}
	var out []models.Participant
	err := s.DB.Where("tournament_id = ?", id).Order("registered_at ASC").Find(&out).Error
	return out, err
}

// GetWinners returns the podium, empty before completion.
func (s *TournamentService) GetWinners(id string) ([]string, error) {
	t, err := s.loadTournament(s.DB, id)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TournamentCompleted {
		return nil, nil
	}
	return []string{t.FirstPlaceID, t.SecondPlaceID, t.ThirdPlaceID}, nil
}

func (s *TournamentService) GetDistribution(id string) (models.Distribution, error) {
	t, err := s.loadTournament(s.DB, id)
	if err != nil {
		return models.Distribution{}, err
	}
	return t.Distribution(), nil
}

// ParticipantEntryFees maps each registered player to the fee they paid.
func (s *TournamentService) ParticipantEntryFees(id string) (map[string]int64, error) {
	parts, err := s.GetParticipants(id)
	if err != nil {
		return nil, err
	}
	fees := make(map[string]int64, len(parts))
	for _, p := range parts {
		fees[p.PlayerID] = p.EntryFeePaid
	}
	return fees, nil
}

func (s *TournamentService) loadTournament(tx *gorm.DB, id string) (*models.Tournament, error) {
	var t models.Tournament
	if err := tx.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}
