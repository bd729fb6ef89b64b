package services

import (
	"context"
	"testing"

	"game-ledger-system/models"
)

func TestPauseBlocksMutations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mustPublishGame(t, "game-1", "alice")
	h.mustCreateItem(t, "item-1", "game-1", 100, 0, models.CategoryCosmetic, "alice")
	h.wallet.fund("bob", 1000)
	h.wallet.fund("alice", 20000)
	p := h.defaultParams("t-1")
	if _, err := h.tournaments.CreateCreatorTournament(ctx, p, "alice"); err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	wantCondition(t, h.platform.Pause(ctx, false), ErrNotAuthorized)
	if err := h.platform.Pause(ctx, true); err != nil {
		t.Fatalf("pause: %v", err)
	}
	paused, err := h.platform.Paused()
	if err != nil || !paused {
		t.Fatalf("paused = %v (%v), want true", paused, err)
	}

	wantCondition(t, h.marketplace.PurchaseItem(ctx, "item-1", "bob"), ErrPaused)
	wantCondition(t, h.tournaments.Register(ctx, "t-1", "bob"), ErrPaused)
	_, err = h.marketplace.PublishGame(ctx, "game-2", "alice")
	wantCondition(t, err, ErrPaused)

	// Pausing again is a no-op, as is resuming twice.
	if err := h.platform.Pause(ctx, true); err != nil {
		t.Fatalf("re-pause: %v", err)
	}
	if err := h.platform.Unpause(ctx, true); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if err := h.platform.Unpause(ctx, true); err != nil {
		t.Fatalf("re-unpause: %v", err)
	}

	if err := h.marketplace.PurchaseItem(ctx, "item-1", "bob"); err != nil {
		t.Fatalf("purchase after unpause: %v", err)
	}
	if err := h.tournaments.Register(ctx, "t-1", "bob"); err != nil {
		t.Fatalf("register after unpause: %v", err)
	}

	pauses, _ := h.ledger.EventsByKind(models.EventPlatformPaused)
	if len(pauses) != 1 {
		t.Errorf("pause events = %d, want 1", len(pauses))
	}
	resumes, _ := h.ledger.EventsByKind(models.EventPlatformUnpaused)
	if len(resumes) != 1 {
		t.Errorf("unpause events = %d, want 1", len(resumes))
	}
}

func TestSetTreasuryRedirectsPlatformShare(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mustPublishGame(t, "game-1", "alice")
	h.mustCreateItem(t, "item-1", "game-1", 100, 0, models.CategoryCosmetic, "alice")
	h.wallet.fund("bob", 1000)

	wantCondition(t, h.platform.SetTreasury(ctx, "treasury-2", false), ErrNotAuthorized)
	wantCondition(t, h.platform.SetTreasury(ctx, "", true), ErrInvalidTreasuryAddress)

	if err := h.platform.SetTreasury(ctx, "treasury-2", true); err != nil {
		t.Fatalf("set treasury: %v", err)
	}
	id, err := h.platform.Treasury()
	if err != nil || id != "treasury-2" {
		t.Fatalf("treasury = %s (%v), want treasury-2", id, err)
	}

	if err := h.marketplace.PurchaseItem(ctx, "item-1", "bob"); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if got := h.wallet.balance("treasury-2"); got != 15 {
		t.Errorf("new treasury balance = %d, want 15", got)
	}
	if got := h.wallet.balance(testTreasury); got != 0 {
		t.Errorf("old treasury balance = %d, want 0", got)
	}
}

func TestAuditEscrowBalances(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mustPublishGame(t, "game-1", "alice")
	h.wallet.fund("alice", 30000)

	p1 := h.defaultParams("t-1")
	if _, err := h.tournaments.CreateCreatorTournament(ctx, p1, "alice"); err != nil {
		t.Fatalf("create t-1: %v", err)
	}
	p2 := h.defaultParams("t-2")
	p2.PrizePool = 5000
	if _, err := h.tournaments.CreateCreatorTournament(ctx, p2, "alice"); err != nil {
		t.Fatalf("create t-2: %v", err)
	}
	registerPlayers(t, h, "t-1", p1.EntryFee, "p1", "p2")

	expected, actual, per, err := h.platform.AuditEscrow(ctx)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	want := p1.PrizePool + 2*p1.EntryFee + p2.PrizePool
	if expected != want {
		t.Errorf("expected = %d, want %d", expected, want)
	}
	if actual != want {
		t.Errorf("actual = %d, want %d", actual, want)
	}
	if len(per) != 2 {
		t.Errorf("per-tournament entries = %d, want 2", len(per))
	}

	// Cancelling drains t-1 from escrow; the audit follows.
	if err := h.tournaments.CancelTournament(ctx, "t-1", "done", "alice", false); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	expected, actual, _, err = h.platform.AuditEscrow(ctx)
	if err != nil {
		t.Fatalf("audit after cancel: %v", err)
	}
	if expected != p2.PrizePool || actual != p2.PrizePool {
		t.Errorf("post-cancel audit = %d/%d, want %d/%d", expected, actual, p2.PrizePool, p2.PrizePool)
	}
}

func TestEventsByAggregateOrdering(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mustPublishGame(t, "game-1", "alice")
	h.mustCreateItem(t, "item-1", "game-1", 100, 0, models.CategoryCosmetic, "alice")
	h.wallet.fund("bob", 1000)
	if err := h.marketplace.PurchaseItem(ctx, "item-1", "bob"); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	events, err := h.ledger.EventsByAggregate("item-1")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	kinds := make([]string, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	want := []string{models.EventItemCreated, models.EventItemPurchased, models.EventCreatorPaid, models.EventTreasuryFunded}
	if len(kinds) != len(want) {
		t.Fatalf("event kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event kinds = %v, want %v", kinds, want)
		}
	}
}
