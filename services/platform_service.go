// services/platform_service.go
package services

import (
	"context"
	"errors"
	"log"

	"game-ledger-system/models"

	"gorm.io/gorm"
)

// PlatformService owns the admin surface: emergency pause, treasury rotation
// and the escrow audit. Admin operations stay available while paused.
type PlatformService struct {
	*Ledger
}

func NewPlatformService(l *Ledger) *PlatformService {
	return &PlatformService{Ledger: l}
}

// Pause halts every state-mutating entry point of both engines. Escrowed
// value is untouched; an admin must explicitly unpause.
func (s *PlatformService) Pause(ctx context.Context, admin bool) error {
	if !admin {
		return ErrNotAuthorized
	}
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		st, err := s.state(tx)
		if err != nil {
			return err
		}
		if st.Paused {
			return nil
		}
		if err := tx.Model(st).Update("paused", true).Error; err != nil {
			return err
		}
		return appendEvent(tx, s.Clock.Now(), models.EventPlatformPaused, "", nil)
	})
}

// Unpause restores normal operation.
func (s *PlatformService) Unpause(ctx context.Context, admin bool) error {
	if !admin {
		return ErrNotAuthorized
	}
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		st, err := s.state(tx)
		if err != nil {
			return err
		}
		if !st.Paused {
			return nil
		}
		if err := tx.Model(st).Update("paused", false).Error; err != nil {
			return err
		}
		return appendEvent(tx, s.Clock.Now(), models.EventPlatformUnpaused, "", nil)
	})
}

// Paused reports the emergency-halt flag.
func (s *PlatformService) Paused() (bool, error) {
	st, err := s.state(s.DB)
	if err != nil {
		return false, err
	}
	return st.Paused, nil
}

// SetTreasury rotates the platform treasury identity. Future purchases and
// platform tournaments use the new identity; escrowed funds are unaffected.
func (s *PlatformService) SetTreasury(ctx context.Context, newID string, admin bool) error {
	if !admin {
		return ErrNotAuthorized
	}
	if newID == "" {
		return ErrInvalidTreasuryAddress
	}
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		st, err := s.state(tx)
		if err != nil {
			return err
		}
		old := st.TreasuryID
		if err := tx.Model(st).Update("treasury_id", newID).Error; err != nil {
			return err
		}
		return appendEvent(tx, s.Clock.Now(), models.EventTreasuryRotated, "", map[string]interface{}{
			"previous": old,
			"current":  newID,
		})
	})
}

// Treasury returns the current treasury identity.
func (s *PlatformService) Treasury() (string, error) {
	st, err := s.state(s.DB)
	if err != nil {
		return "", err
	}
	return st.TreasuryID, nil
}

// EscrowExpectation is one tournament's share of the escrow account.
type EscrowExpectation struct {
	TournamentID string `json:"tournament_id"`
	Expected     int64  `json:"expected"`
}

// AuditEscrow recomputes what the escrow account should hold for every open
// tournament and compares it with the wallet service's view. Read-only; a
// nonzero drift is logged and returned, never corrected automatically.
func (s *PlatformService) AuditEscrow(ctx context.Context) (expected int64, actual int64, perTournament []EscrowExpectation, err error) {
	var open []models.Tournament
	if err = s.DB.Where("status IN ?", []models.TournamentStatus{
		models.TournamentRegistration,
		models.TournamentActive,
	}).Find(&open).Error; err != nil {
		return 0, 0, nil, err
	}
	for _, t := range open {
		held := t.PrizePool + t.AccruedEntryFees
		expected += held
		perTournament = append(perTournament, EscrowExpectation{TournamentID: t.ID, Expected: held})
	}

	st, err := s.state(s.DB)
	if err != nil {
		return 0, 0, nil, err
	}
	actual, err = s.Wallet.BalanceOf(ctx, st.EscrowID)
	if err != nil {
		return expected, 0, perTournament, err
	}
	if actual != expected {
		log.Printf("escrow drift: expected %d, wallet reports %d (%d open tournaments)", expected, actual, len(open))
	}
	return expected, actual, perTournament, nil
}

// BalanceOf resolves an account balance, preferring the local wallet mirror
// and falling back to the wallet service when the account is not mirrored.
func (s *PlatformService) BalanceOf(ctx context.Context, account string) (int64, error) {
	var m models.WalletMirror
	err := s.DB.First(&m, "account_id = ?", account).Error
	if err == nil {
		return m.Balance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	return s.Wallet.BalanceOf(ctx, account)
}
