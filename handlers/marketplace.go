// handlers/marketplace.go
package handlers

import (
	"fmt"
	"path/filepath"

	"game-ledger-system/middleware"
	"game-ledger-system/models"
	"game-ledger-system/services"
	"game-ledger-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupMarketplaceRoutes(app *fiber.App, marketplace *services.MarketplaceService) {
	// Read-only routes — no user context, but still behind Gateway auth.
	app.Get("/games/:id", func(c *fiber.Ctx) error {
		game, err := marketplace.GetGame(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(game)
	})
	app.Get("/games/:id/items", func(c *fiber.Ctx) error {
		items, err := marketplace.GetGameItems(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		item, err := marketplace.GetItem(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(item)
	})
	app.Get("/players/:player/items/:id/owned", func(c *fiber.Ctx) error {
		owned, err := marketplace.OwnsItem(c.Params("player"), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"owned": owned})
	})
	app.Get("/players/:player/items/:id/balance", func(c *fiber.Ctx) error {
		qty, err := marketplace.ConsumableBalance(c.Params("player"), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"quantity": qty})
	})

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/games", func(c *fiber.Ctx) error {
		var req struct {
			ID string `json:"id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		game, err := marketplace.PublishGame(c.Context(), req.ID, middleware.CallerID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(game)
	})

	secured.Post("/games/:id/deactivate", func(c *fiber.Ctx) error {
		if err := marketplace.DeactivateGame(c.Context(), c.Params("id"), middleware.CallerID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "game deactivated"})
	})

	secured.Post("/games/:id/items", func(c *fiber.Ctx) error {
		var req struct {
			ID        string `json:"id"`
			Price     int64  `json:"price"`
			MaxSupply int64  `json:"max_supply"`
			Category  string `json:"category"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		item, err := marketplace.CreateItem(c.Context(), req.ID, c.Params("id"),
			req.Price, req.MaxSupply, models.ItemCategory(req.Category), middleware.CallerID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(item)
	})

	secured.Patch("/items/:id/price", func(c *fiber.Ctx) error {
		var req struct {
			Price int64 `json:"price"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := marketplace.UpdateItemPrice(c.Context(), c.Params("id"), req.Price, middleware.CallerID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "price updated"})
	})

	secured.Post("/items/:id/deactivate", func(c *fiber.Ctx) error {
		if err := marketplace.DeactivateItem(c.Context(), c.Params("id"), middleware.CallerID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "item deactivated"})
	})

	secured.Post("/items/:id/purchase", func(c *fiber.Ctx) error {
		if err := marketplace.PurchaseItem(c.Context(), c.Params("id"), middleware.CallerID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "purchase complete"})
	})

	secured.Post("/purchases", func(c *fiber.Ctx) error {
		var req struct {
			ItemIDs []string `json:"item_ids"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if len(req.ItemIDs) == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "item_ids is required"})
		}
		if err := marketplace.PurchaseItems(c.Context(), req.ItemIDs, middleware.CallerID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "purchases complete", "count": len(req.ItemIDs)})
	})

	secured.Post("/items/:id/use", func(c *fiber.Ctx) error {
		var req struct {
			Player string `json:"player"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.Player == "" {
			return c.Status(400).JSON(fiber.Map{"error": "player is required"})
		}
		if err := marketplace.UseConsumable(c.Context(), req.Player, c.Params("id"), middleware.CallerID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "consumable used"})
	})

	// Artwork uploads go to R2; only the URL is stored on the record.
	secured.Post("/games/:id/artwork", func(c *fiber.Ctx) error {
		file, err := c.FormFile("artwork")
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "artwork file is required"})
		}
		ext := filepath.Ext(file.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		url, err := utils.UploadFileToR2(file, fmt.Sprintf("games/%s/%s%s", c.Params("id"), uuid.NewString(), ext))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload artwork"})
		}
		if err := marketplace.SetGameArtwork(c.Context(), c.Params("id"), url, middleware.CallerID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"artwork_url": url})
	})

	secured.Post("/items/:id/artwork", func(c *fiber.Ctx) error {
		file, err := c.FormFile("artwork")
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "artwork file is required"})
		}
		ext := filepath.Ext(file.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		url, err := utils.UploadFileToR2(file, fmt.Sprintf("items/%s/%s%s", c.Params("id"), uuid.NewString(), ext))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload artwork"})
		}
		if err := marketplace.SetItemArtwork(c.Context(), c.Params("id"), url, middleware.CallerID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"artwork_url": url})
	})
}
