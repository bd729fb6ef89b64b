// handlers/admin.go
package handlers

import (
	"game-ledger-system/middleware"
	"game-ledger-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, platform *services.PlatformService) {
	app.Get("/accounts/:id/balance", func(c *fiber.Ctx) error {
		balance, err := platform.BalanceOf(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"account": c.Params("id"), "balance": balance})
	})

	admin := app.Group("/admin", middleware.UserContextMiddleware())

	admin.Post("/pause", func(c *fiber.Ctx) error {
		if err := platform.Pause(c.Context(), middleware.IsAdmin(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "platform paused"})
	})

	admin.Post("/unpause", func(c *fiber.Ctx) error {
		if err := platform.Unpause(c.Context(), middleware.IsAdmin(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "platform unpaused"})
	})

	admin.Put("/treasury", func(c *fiber.Ctx) error {
		var req struct {
			TreasuryID string `json:"treasury_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := platform.SetTreasury(c.Context(), req.TreasuryID, middleware.IsAdmin(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "treasury updated"})
	})

	admin.Get("/events", func(c *fiber.Ctx) error {
		kind := c.Query("kind")
		if kind == "" {
			return c.Status(400).JSON(fiber.Map{"error": "kind query parameter is required"})
		}
		events, err := platform.EventsByKind(kind)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(events)
	})

	admin.Get("/escrow/audit", func(c *fiber.Ctx) error {
		expected, actual, perTournament, err := platform.AuditEscrow(c.Context())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"expected":    expected,
			"actual":      actual,
			"drift":       actual - expected,
			"tournaments": perTournament,
		})
	})
}
