package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"game-ledger-system/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testTreasury = "treasury-1"
	testEscrow   = "escrow-1"
)

// fakeWallet is an in-memory value-transfer ledger. Debits fail when the
// account cannot cover the amount, exactly like the real collaborator.
type fakeWallet struct {
	mu       sync.Mutex
	balances map[string]int64
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{balances: make(map[string]int64)}
}

func (w *fakeWallet) fund(account string, amount int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[account] += amount
}

func (w *fakeWallet) balance(account string) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[account]
}

func (w *fakeWallet) Debit(ctx context.Context, account string, amount int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[account] < amount {
		return fmt.Errorf("insufficient balance on %s: have %d, need %d", account, w.balances[account], amount)
	}
	w.balances[account] -= amount
	return nil
}

func (w *fakeWallet) Credit(ctx context.Context, account string, amount int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[account] += amount
	return nil
}

func (w *fakeWallet) BalanceOf(ctx context.Context, account string) (int64, error) {
	return w.balance(account), nil
}

// testClock is a settable clock shared by all services in a harness.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type harness struct {
	ledger      *Ledger
	wallet      *fakeWallet
	clock       *testClock
	marketplace *MarketplaceService
	tournaments *TournamentService
	platform    *PlatformService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Game{},
		&models.Item{},
		&models.Ownership{},
		&models.ConsumableBalance{},
		&models.Tournament{},
		&models.Participant{},
		&models.Event{},
		&models.PlatformState{},
		&models.WalletMirror{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := EnsurePlatformState(db, testTreasury, testEscrow); err != nil {
		t.Fatalf("seed platform state: %v", err)
	}

	wallet := newFakeWallet()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	ledger := NewLedger(db, wallet, clock)
	return &harness{
		ledger:      ledger,
		wallet:      wallet,
		clock:       clock,
		marketplace: NewMarketplaceService(ledger),
		tournaments: NewTournamentService(ledger),
		platform:    NewPlatformService(ledger),
	}
}

func (h *harness) mustPublishGame(t *testing.T, id, creator string) {
	t.Helper()
	if _, err := h.marketplace.PublishGame(context.Background(), id, creator); err != nil {
		t.Fatalf("publish game %s: %v", id, err)
	}
}

func (h *harness) mustCreateItem(t *testing.T, id, gameID string, price, maxSupply int64, category models.ItemCategory, creator string) {
	t.Helper()
	if _, err := h.marketplace.CreateItem(context.Background(), id, gameID, price, maxSupply, category, creator); err != nil {
		t.Fatalf("create item %s: %v", id, err)
	}
}

// defaultParams returns a tournament window that is open for registration at
// the harness clock's initial time and startable one hour later.
func (h *harness) defaultParams(id string) TournamentParams {
	base := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	return TournamentParams{
		ID:                id,
		GameID:            "game-1",
		PrizePool:         10000,
		EntryFee:          100,
		MaxParticipants:   8,
		RegistrationStart: base,
		RegistrationEnd:   base.Add(2 * time.Hour),
		StartTime:         base.Add(2 * time.Hour),
	}
}

func wantCondition(t *testing.T, err error, want *Condition) {
	t.Helper()
	if err != want {
		t.Fatalf("want %v, got %v", want, err)
	}
}
