// services/marketplace_service.go
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

// PlatformFeePct is the platform's share of every item sale. The creator
// amount is floored and the platform takes the exact remainder, so the two
// shares always sum to the price.
const PlatformFeePct = 15

type MarketplaceService struct {
	*Ledger
}

func NewMarketplaceService(l *Ledger) *MarketplaceService {
	return &MarketplaceService{Ledger: l}
}

// SplitPrice returns the 85/15 creator/platform division of price.
func SplitPrice(price int64) (creatorAmount, platformAmount int64) {
	creatorAmount = price * (100 - PlatformFeePct) / 100
	platformAmount = price - creatorAmount
	return
}

// PublishGame registers a new game under the creator's identity.
func (s *MarketplaceService) PublishGame(ctx context.Context, id, creator string) (*models.Game, error) {
	s.lock()
	defer s.unlock()

	if id == "" {
		return nil, ErrInvalidID
	}
	var game *models.Game
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireUnpaused(tx); err != nil {
			return err
		}
		var existing models.Game
		if err := tx.First(&existing, "id = ?", id).Error; err == nil {
			return ErrDuplicateGame
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		now := s.Clock.Now()
		game = &models.Game{ID: id, CreatorID: creator, Active: true}
		if err := tx.Create(game).Error; err != nil {
			return err
		}
		return appendEvent(tx, now, models.EventGamePublished, id, map[string]interface{}{
			"gameId":    id,
			"creator":   creator,
			"timestamp": now.Unix(),
		})
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// DeactivateGame turns a game off permanently; there is no reactivation path.
func (s *MarketplaceService) DeactivateGame(ctx context.Context, id, caller string) error {
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireUnpaused(tx); err != nil {
			return err
		}
		game, err := s.loadGame(tx, id)
		if err != nil {
			return err
		}
		if game.CreatorID != caller {
			return ErrNotGameCreator
		}
		now := s.Clock.Now()
		if err := tx.Model(game).Update("active", false).Error; err != nil {
			return err
		}
		return appendEvent(tx, now, models.EventGameDeactivated, id, map[string]interface{}{
			"gameId":    id,
			"creator":   caller,
			"timestamp": now.Unix(),
		})
	})
}

// CreateItem registers a purchasable item under an active game owned by the
// caller. Item ids are globally unique.
func (s *MarketplaceService) CreateItem(ctx context.Context, id, gameID string, price, maxSupply int64, category models.ItemCategory, caller string) (*models.Item, error) {
	s.lock()
	defer s.unlock()

	if id == "" {
		return nil, ErrInvalidID
	}
	if price <= 0 {
		return nil, ErrPriceNotPositive
	}
	if !models.ValidCategory(category) {
		return nil, ErrInvalidCategory
	}
	var item *models.Item
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireUnpaused(tx); err != nil {
			return err
		}
		game, err := s.loadGame(tx, gameID)
		if err != nil {
			return err
		}
		if game.CreatorID != caller {
			return ErrNotGameCreator
		}
		if !game.Active {
			return ErrGameNotActive
		}
		var existing models.Item
		if err := tx.First(&existing, "id = ?", id).Error; err == nil {
			return ErrDuplicateItem
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		item = &models.Item{
			ID:        id,
			GameID:    gameID,
			CreatorID: caller,
			Price:     price,
			MaxSupply: maxSupply,
			Category:  category,
			Active:    true,
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		now := s.Clock.Now()
		return appendEvent(tx, now, models.EventItemCreated, id, map[string]interface{}{
			"itemId":    id,
			"gameId":    gameID,
			"creator":   caller,
			"price":     price,
			"maxSupply": maxSupply,
			"category":  string(category),
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemPrice changes the price of an item owned by the caller.
func (s *MarketplaceService) UpdateItemPrice(ctx context.Context, id string, newPrice int64, caller string) error {
	s.lock()
	defer s.unlock()

	if newPrice <= 0 {
		return ErrPriceNotPositive
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireUnpaused(tx); err != nil {
			return err
		}
		item, err := s.loadItem(tx, id)
		if err != nil {
			return err
		}
		if item.CreatorID != caller {
			return ErrNotItemCreator
		}
		return tx.Model(item).Update("price", newPrice).Error
	})
}

// DeactivateItem turns an item off; deactivated items cannot be purchased.
func (s *MarketplaceService) DeactivateItem(ctx context.Context, id, caller string) error {
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireUnpaused(tx); err != nil {
			return err
		}
		item, err := s.loadItem(tx, id)
		if err != nil {
			return err
		}
		if item.CreatorID != caller {
			return ErrNotItemCreator
		}
		return tx.Model(item).Update("active", false).Error
	})
}

// SetGameArtwork stores the uploaded artwork URL for a game.
func (s *MarketplaceService) SetGameArtwork(ctx context.Context, id, url, caller string) error {
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireUnpaused(tx); err != nil {
			return err
		}
		game, err := s.loadGame(tx, id)
		if err != nil {
			return err
		}
		if game.CreatorID != caller {
			return ErrNotGameCreator
		}
		return tx.Model(game).Update("artwork_url", url).Error
	})
}

// SetItemArtwork stores the uploaded artwork URL for an item.
func (s *MarketplaceService) SetItemArtwork(ctx context.Context, id, url, caller string) error {
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireUnpaused(tx); err != nil {
			return err
		}
		item, err := s.loadItem(tx, id)
		if err != nil {
			return err
		}
		if item.CreatorID != caller {
			return ErrNotItemCreator
		}
		return tx.Model(item).Update("artwork_url", url).Error
	})
}

// pendingTransfer is a wallet call planned during the effects phase of a
// purchase and executed only after every local write has been applied.
type pendingTransfer struct {
	debit   bool
	account string
	amount  int64
}

// PurchaseItem buys one item for the buyer, splitting the price 85/15
// between creator and platform treasury.
func (s *MarketplaceService) PurchaseItem(ctx context.Context, id, buyer string) error {
	return s.PurchaseItems(ctx, []string{id}, buyer)
}

// PurchaseItems applies the purchase protocol once per id, in order. Any
// single failure aborts the whole batch: the transaction rolls back and no
// wallet transfer has been issued yet, so no partial purchase persists.
func (s *MarketplaceService) PurchaseItems(ctx context.Context, ids []string, buyer string) error {
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		st, err := s.requireUnpaused(tx)
		if err != nil {
			return err
		}
		now := s.Clock.Now()
		var transfers []pendingTransfer
		for _, id := range ids {
			planned, err := s.applyPurchase(tx, st, id, buyer, now)
			if err != nil {
				return err
			}
			transfers = append(transfers, planned...)
		}
		// Effects are in place; issue debits first so an uncovered buyer
		// aborts before any credit leaves escrow-neutral ground.
		for _, t := range transfers {
			if !t.debit {
				continue
			}
			if err := s.Wallet.Debit(ctx, t.account, t.amount); err != nil {
				log.Printf("purchase debit failed for %s (%d): %v", t.account, t.amount, err)
				return ErrTransferFailed
			}
		}
		for _, t := range transfers {
			if t.debit {
				continue
			}
			if err := s.Wallet.Credit(ctx, t.account, t.amount); err != nil {
				return ErrTransferFailed
			}
		}
		return nil
	})
}

// applyPurchase validates one item and applies its local effects and events,
// returning the wallet transfers the purchase requires.
func (s *MarketplaceService) applyPurchase(tx *gorm.DB, st *models.PlatformState, id, buyer string, now time.Time) ([]pendingTransfer, error) {
	item, err := s.loadItem(tx, id)
	if err != nil {
		return nil, err
	}
	if !item.Active {
		return nil, ErrItemNotActive
	}
	game, err := s.loadGame(tx, item.GameID)
	if err != nil {
		return nil, err
	}
	if !game.Active {
		return nil, ErrGameNotActive
	}
	if item.MaxSupply != 0 && item.CurrentSupply >= item.MaxSupply {
		return nil, ErrSoldOut
	}
	if buyer == item.CreatorID {
		return nil, ErrCannotPurchaseOwnItem
	}

	if item.Category == models.CategoryConsumable {
		var bal models.ConsumableBalance
		err := tx.First(&bal, "player_id = ? AND item_id = ?", buyer, id).Error
		switch {
		case err == nil:
			if err := tx.Model(&bal).Update("quantity", gorm.Expr("quantity + 1")).Error; err != nil {
				return nil, err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			bal = models.ConsumableBalance{ID: uuid.NewString(), PlayerID: buyer, ItemID: id, Quantity: 1}
			if err := tx.Create(&bal).Error; err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	} else {
		var owned models.Ownership
		if err := tx.First(&owned, "player_id = ? AND item_id = ?", buyer, id).Error; err == nil {
			return nil, ErrAlreadyOwned
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		rec := models.Ownership{ID: uuid.NewString(), PlayerID: buyer, ItemID: id, GameID: item.GameID}
		if err := tx.Create(&rec).Error; err != nil {
			return nil, err
		}
	}

	creatorAmount, platformAmount := SplitPrice(item.Price)

	if err := tx.Model(item).Update("current_supply", gorm.Expr("current_supply + 1")).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(game).Updates(map[string]interface{}{
		"total_revenue":    gorm.Expr("total_revenue + ?", item.Price),
		"creator_earnings": gorm.Expr("creator_earnings + ?", creatorAmount),
	}).Error; err != nil {
		return nil, err
	}

	if err := appendEvent(tx, now, models.EventItemPurchased, id, map[string]interface{}{
		"itemId":         id,
		"gameId":         item.GameID,
		"buyer":          buyer,
		"price":          item.Price,
		"creatorAmount":  creatorAmount,
		"platformAmount": platformAmount,
	}); err != nil {
		return nil, err
	}
	if err := appendEvent(tx, now, models.EventCreatorPaid, id, map[string]interface{}{
		"itemId":  id,
		"creator": item.CreatorID,
		"amount":  creatorAmount,
	}); err != nil {
		return nil, err
	}
	if err := appendEvent(tx, now, models.EventTreasuryFunded, id, map[string]interface{}{
		"itemId":   id,
		"treasury": st.TreasuryID,
		"amount":   platformAmount,
	}); err != nil {
		return nil, err
	}

	return []pendingTransfer{
		{debit: true, account: buyer, amount: item.Price},
		{account: item.CreatorID, amount: creatorAmount},
		{account: st.TreasuryID, amount: platformAmount},
	}, nil
}

// UseConsumable burns one unit of a consumable item on the player's behalf.
// The caller must be the creator of the item's game (server-side
// consumption), matching how game backends report item usage.
func (s *MarketplaceService) UseConsumable(ctx context.Context, player, itemID, caller string) error {
	s.lock()
	defer s.unlock()

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireUnpaused(tx); err != nil {
			return err
		}
		item, err := s.loadItem(tx, itemID)
		if err != nil {
			return err
		}
		if item.Category != models.CategoryConsumable {
			return ErrNotConsumable
		}
		game, err := s.loadGame(tx, item.GameID)
		if err != nil {
			return err
		}
		if game.CreatorID != caller {
			return ErrNotGameCreator
		}
		var bal models.ConsumableBalance
		if err := tx.First(&bal, "player_id = ? AND item_id = ?", player, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoConsumablesOwned
			}
			return err
		}
		if bal.Quantity <= 0 {
			return ErrNoConsumablesOwned
		}
		return tx.Model(&bal).Update("quantity", gorm.Expr("quantity - 1")).Error
	})
}

// --- Read accessors ---

func (s *MarketplaceService) GetGame(id string) (*models.Game, error) {
	return s.loadGame(s.DB, id)
}

func (s *MarketplaceService) GetItem(id string) (*models.Item, error) {
	return s.loadItem(s.DB, id)
}

// GetGameItems lists a game's items in creation order.
func (s *MarketplaceService) GetGameItems(gameID string) ([]models.Item, error) {
	if _, err := s.loadGame(s.DB, gameID); err != nil {
		return nil, err
	}
	var items []models.Item
	err := s.DB.Where("game_id = ?", gameID).Order("created_at ASC").Find(&items).Error
	return items, err
}

// OwnsItem reports whether the player owns a non-consumable item.
func (s *MarketplaceService) OwnsItem(player, itemID string) (bool, error) {
	var rec models.Ownership
	err := s.DB.First(&rec, "player_id = ? AND item_id = ?", player, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ConsumableBalance returns the player's remaining quantity of a consumable.
func (s *MarketplaceService) ConsumableBalance(player, itemID string) (int64, error) {
	var bal models.ConsumableBalance
	err := s.DB.First(&bal, "player_id = ? AND item_id = ?", player, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bal.Quantity, nil
}

func (s *MarketplaceService) loadGame(tx *gorm.DB, id string) (*models.Game, error) {
	var game models.Game
	if err := tx.First(&game, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (s *MarketplaceService) loadItem(tx *gorm.DB, id string) (*models.Item, error) {
	var item models.Item
	if err := tx.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}
