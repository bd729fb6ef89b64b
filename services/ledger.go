// services/ledger.go
package services

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"game-ledger-system/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Clock supplies the ambient time. Registration and start windows are
// evaluated against Clock.Now at the moment of invocation.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Ledger bundles the shared dependencies of the marketplace and tournament
// engines: the store, the external value-transfer collaborator and the
// clock. The mutex serializes every mutating operation end to end, so a
// reentrant call issued from inside a wallet credit blocks until the current
// operation has fully committed.
type Ledger struct {
	DB     *gorm.DB
	Wallet ValueTransfer
	Clock  Clock

	mu sync.Mutex
}

func NewLedger(db *gorm.DB, wallet ValueTransfer, clock Clock) *Ledger {
	if clock == nil {
		clock = SystemClock
	}
	return &Ledger{DB: db, Wallet: wallet, Clock: clock}
}

func (l *Ledger) lock()   { l.mu.Lock() }
func (l *Ledger) unlock() { l.mu.Unlock() }

// state loads the singleton platform row inside tx.
func (l *Ledger) state(tx *gorm.DB) (*models.PlatformState, error) {
	var st models.PlatformState
	if err := tx.First(&st, "id = 1").Error; err != nil {
		return nil, err
	}
	return &st, nil
}

// requireUnpaused gates every state-mutating entry point except the admin
// operations themselves.
func (l *Ledger) requireUnpaused(tx *gorm.DB) (*models.PlatformState, error) {
	st, err := l.state(tx)
	if err != nil {
		return nil, err
	}
	if st.Paused {
		return nil, ErrPaused
	}
	return st, nil
}

// appendEvent inserts an event row in the caller's transaction so the record
// commits or rolls back together with the mutation it describes.
func appendEvent(tx *gorm.DB, ts time.Time, kind, aggregateID string, payload map[string]interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&models.Event{
		ID:          uuid.NewString(),
		Kind:        kind,
		AggregateID: aggregateID,
		Payload:     datatypes.JSON(raw),
		EmittedAt:   ts,
	}).Error
}

// EventsByAggregate returns the append-only log for one game, item or
// tournament, oldest first.
func (l *Ledger) EventsByAggregate(aggregateID string) ([]models.Event, error) {
	var out []models.Event
	err := l.DB.Where("aggregate_id = ?", aggregateID).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

// EventsByKind returns every event of one kind, oldest first.
func (l *Ledger) EventsByKind(kind string) ([]models.Event, error) {
	var out []models.Event
	err := l.DB.Where("kind = ?", kind).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

// EnsurePlatformState seeds the singleton platform row at boot. Existing
// treasury/escrow identities are left untouched; rotation goes through
// PlatformService.SetTreasury.
func EnsurePlatformState(db *gorm.DB, treasuryID, escrowID string) error {
	var st models.PlatformState
	err := db.First(&st, "id = 1").Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	log.Printf("seeding platform state (treasury=%s escrow=%s)", treasuryID, escrowID)
	return db.Create(&models.PlatformState{ID: 1, TreasuryID: treasuryID, EscrowID: escrowID}).Error
}
