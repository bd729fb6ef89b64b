package services

import (
	"context"
	"testing"

	"game-ledger-system/models"
)

func TestSplitPriceAlwaysSumsToPrice(t *testing.T) {
	for price := int64(1); price <= 300; price++ {
		creator, platform := SplitPrice(price)
		if creator+platform != price {
			t.Fatalf("price %d: split %d+%d does not sum back", price, creator, platform)
		}
		if creator != price*85/100 {
			t.Fatalf("price %d: creator share %d, want %d", price, creator, price*85/100)
		}
	}
}

func TestPublishGame(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	g, err := h.marketplace.PublishGame(ctx, "game-1", "alice")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !g.Active || g.CreatorID != "alice" {
		t.Fatalf("unexpected game state: %+v", g)
	}

	_, err = h.marketplace.PublishGame(ctx, "game-1", "bob")
	wantCondition(t, err, ErrDuplicateGame)

	_, err = h.marketplace.PublishGame(ctx, "", "alice")
	wantCondition(t, err, ErrInvalidID)

	events, err := h.ledger.EventsByAggregate("game-1")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 1 || events[0].Kind != models.EventGamePublished {
		t.Fatalf("want one GamePublished event, got %+v", events)
	}
}

func TestPurchaseSplitsRevenue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mustPublishGame(t, "game-1", "alice")
	h.mustCreateItem(t, "item-1", "game-1", 100, 10, models.CategoryCosmetic, "alice")
	h.wallet.fund("bob", 500)

	owned, err := h.marketplace.OwnsItem("bob", "item-1")
	if err != nil || owned {
		t.Fatalf("pre-purchase ownership: %v %v", owned, err)
	}

	if err := h.marketplace.PurchaseItem(ctx, "item-1", "bob"); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	if got := h.wallet.balance("bob"); got != 400 {
		t.Errorf("buyer balance = %d, want 400", got)
	}
	if got := h.wallet.balance("alice"); got != 85 {
		t.Errorf("creator balance = %d, want 85", got)
	}
	if got := h.wallet.balance(testTreasury); got != 15 {
		t.Errorf("treasury balance = %d, want 15", got)
	}

	owned, err = h.marketplace.OwnsItem("bob", "item-1")
	if err != nil || !owned {
		t.Fatalf("post-purchase ownership: %v %v", owned, err)
	}

	item, err := h.marketplace.GetItem("item-1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.CurrentSupply != 1 {
		t.Errorf("supply = %d, want 1", item.CurrentSupply)
	}

	game, err := h.marketplace.GetGame("game-1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if game.TotalRevenue != 100 || game.CreatorEarnings != 85 {
		t.Errorf("revenue counters = %d/%d, want 100/85", game.TotalRevenue, game.CreatorEarnings)
	}
}

func TestPurchaseRejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mustPublishGame(t, "game-1", "alice")
	h.mustCreateItem(t, "item-1", "game-1", 100, 0, models.CategoryCosmetic, "alice")
	h.mustCreateItem(t, "limited", "game-1", 100, 1, models.CategoryCosmetic, "alice")
	h.wallet.fund("bob", 1000)
	h.wallet.fund("carol", 1000)
	h.wallet.fund("alice", 1000)

	wantCondition(t, h.marketplace.PurchaseItem(ctx, "item-1", "alice"), ErrCannotPurchaseOwnItem)

	if err := h.marketplace.PurchaseItem(ctx, "item-1", "bob"); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	wantCondition(t, h.marketplace.PurchaseItem(ctx, "item-1", "bob"), ErrAlreadyOwned)

	// maxSupply 1 is exhausted by the first copy sold.
	if err := h.marketplace.PurchaseItem(ctx, "limited", "bob"); err != nil {
		t.Fatalf("limited purchase: %v", err)
	}
	wantCondition(t, h.marketplace.PurchaseItem(ctx, "limited", "carol"), ErrSoldOut)

	h.mustCreateItem(t, "item-2", "game-1", 100, 0, models.CategoryCosmetic, "alice")
	if err := h.marketplace.DeactivateItem(ctx, "item-2", "alice"); err != nil {
		t.Fatalf("deactivate item: %v", err)
	}
	wantCondition(t, h.marketplace.PurchaseItem(ctx, "item-2", "carol"), ErrItemNotActive)

	h.mustCreateItem(t, "item-3", "game-1", 100, 0, models.CategoryCosmetic, "alice")
	if err := h.marketplace.DeactivateGame(ctx, "game-1", "alice"); err != nil {
		t.Fatalf("deactivate game: %v", err)
	}
	wantCondition(t, h.marketplace.PurchaseItem(ctx, "item-3", "carol"), ErrGameNotActive)
}

func TestPurchaseInsufficientFundsRollsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mustPublishGame(t, "game-1", "alice")
	h.mustCreateItem(t, "item-1", "game-1", 100, 10, models.CategoryCosmetic, "alice")
	h.wallet.fund("bob", 40)

	wantCondition(t, h.marketplace.PurchaseItem(ctx, "item-1", "bob"), ErrTransferFailed)

	// No partial effects: balance, supply, and ownership all untouched.
	if got := h.wallet.balance("bob"); got != 40 {
		t.Errorf("buyer balance = %d, want 40", got)
	}
	item, err := h.marketplace.GetItem("item-1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.CurrentSupply != 0 {
		t.Errorf("supply = %d, want 0", item.CurrentSupply)
	}
	owned, _ := h.marketplace.OwnsItem("bob", "item-1")
	if owned {
		t.Error("ownership recorded despite failed transfer")
	}
	events, _ := h.ledger.EventsByKind(models.EventItemPurchased)
	if len(events) != 0 {
		t.Errorf("purchase events recorded despite rollback: %d", len(events))
	}
}

func TestBatchPurchaseAllOrNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mustPublishGame(t, "game-1", "alice")
	h.mustCreateItem(t, "item-1", "game-1", 100, 10, models.CategoryCosmetic, "alice")
	h.mustCreateItem(t, "item-2", "game-1", 200, 10, models.CategoryCosmetic, "alice")
	h.wallet.fund("bob", 1000)

	if err := h.marketplace.PurchaseItem(ctx, "item-2", "bob"); err != nil {
		t.Fatalf("seed purchase: %v", err)
	}

	// item-2 is already owned, so the whole batch must fail and leave
	// item-1 unsold.
	wantCondition(t, h.marketplace.PurchaseItems(ctx, []string{"item-1", "item-2"}, "bob"), ErrAlreadyOwned)

	if got := h.wallet.balance("bob"); got != 800 {
		t.Errorf("buyer balance = %d, want 800", got)
	}
	owned, _ := h.marketplace.OwnsItem("bob", "item-1")
	if owned {
		t.Error("item-1 sold despite batch failure")
	}

	if err := h.marketplace.PurchaseItems(ctx, []string{"item-1"}, "bob"); err != nil {
		t.Fatalf("retry batch: %v", err)
	}
	if got := h.wallet.balance("bob"); got != 700 {
		t.Errorf("buyer balance after retry = %d, want 700", got)
	}
}

func TestConsumableLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mustPublishGame(t, "game-1", "alice")
	h.mustCreateItem(t, "potion", "game-1", 50, 0, models.CategoryConsumable, "alice")
	h.mustCreateItem(t, "hat", "game-1", 50, 0, models.CategoryCosmetic, "alice")
	h.wallet.fund("bob", 1000)

	// Consumables stack: a second purchase increments quantity instead of
	// failing with AlreadyOwned.
	if err := h.marketplace.PurchaseItem(ctx, "potion", "bob"); err != nil {
		t.Fatalf("purchase 1: %v", err)
	}
	if err := h.marketplace.PurchaseItem(ctx, "potion", "bob"); err != nil {
		t.Fatalf("purchase 2: %v", err)
	}
	qty, err := h.marketplace.ConsumableBalance("bob", "potion")
	if err != nil || qty != 2 {
		t.Fatalf("quantity = %d (%v), want 2", qty, err)
	}

	if err := h.marketplace.UseConsumable(ctx, "bob", "potion", "alice"); err != nil {
		t.Fatalf("use: %v", err)
	}
	qty, _ = h.marketplace.ConsumableBalance("bob", "potion")
	if qty != 1 {
		t.Fatalf("quantity after use = %d, want 1", qty)
	}

	wantCondition(t, h.marketplace.UseConsumable(ctx, "bob", "potion", "mallory"), ErrNotGameCreator)
	wantCondition(t, h.marketplace.UseConsumable(ctx, "bob", "hat", "alice"), ErrNotConsumable)

	if err := h.marketplace.UseConsumable(ctx, "bob", "potion", "alice"); err != nil {
		t.Fatalf("use last: %v", err)
	}
	wantCondition(t, h.marketplace.UseConsumable(ctx, "bob", "potion", "alice"), ErrNoConsumablesOwned)
}

func TestItemValidationAndPriceUpdate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.mustPublishGame(t, "game-1", "alice")

	_, err := h.marketplace.CreateItem(ctx, "item-1", "game-1", 0, 0, models.CategoryCosmetic, "alice")
	wantCondition(t, err, ErrPriceNotPositive)

	_, err = h.marketplace.CreateItem(ctx, "item-1", "game-1", 100, 0, "weapon", "alice")
	wantCondition(t, err, ErrInvalidCategory)

	_, err = h.marketplace.CreateItem(ctx, "item-1", "game-1", 100, 0, models.CategoryCosmetic, "bob")
	wantCondition(t, err, ErrNotGameCreator)

	_, err = h.marketplace.CreateItem(ctx, "item-1", "missing", 100, 0, models.CategoryCosmetic, "alice")
	wantCondition(t, err, ErrGameNotFound)

	h.mustCreateItem(t, "item-1", "game-1", 100, 0, models.CategoryCosmetic, "alice")
	_, err = h.marketplace.CreateItem(ctx, "item-1", "game-1", 100, 0, models.CategoryCosmetic, "alice")
	wantCondition(t, err, ErrDuplicateItem)

	wantCondition(t, h.marketplace.UpdateItemPrice(ctx, "item-1", -5, "alice"), ErrPriceNotPositive)
	wantCondition(t, h.marketplace.UpdateItemPrice(ctx, "item-1", 200, "bob"), ErrNotItemCreator)
	if err := h.marketplace.UpdateItemPrice(ctx, "item-1", 200, "alice"); err != nil {
		t.Fatalf("update price: %v", err)
	}
	item, _ := h.marketplace.GetItem("item-1")
	if item.Price != 200 {
		t.Fatalf("price = %d, want 200", item.Price)
	}
}
