// handlers/tournament.go
package handlers

import (
	"time"

	"game-ledger-system/middleware"
	"game-ledger-system/models"
	"game-ledger-system/services"

	"github.com/gofiber/fiber/v2"
)

type tournamentRequest struct {
	ID                string `json:"id"`
	GameID            string `json:"game_id"`
	PrizePool         int64  `json:"prize_pool"`
	EntryFee          int64  `json:"entry_fee"`
	MaxParticipants   int    `json:"max_participants"`
	RegistrationStart string `json:"registration_start"` // RFC3339
	RegistrationEnd   string `json:"registration_end"`
	StartTime         string `json:"start_time"`
}

func (r *tournamentRequest) params(c *fiber.Ctx) (services.TournamentParams, bool) {
	regStart, err := time.Parse(time.RFC3339, r.RegistrationStart)
	if err != nil {
		c.Status(400).JSON(fiber.Map{"error": "invalid registration_start (use RFC3339)"})
		return services.TournamentParams{}, false
	}
	regEnd, err := time.Parse(time.RFC3339, r.RegistrationEnd)
	if err != nil {
		c.Status(400).JSON(fiber.Map{"error": "invalid registration_end (use RFC3339)"})
		return services.TournamentParams{}, false
	}
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		c.Status(400).JSON(fiber.Map{"error": "invalid start_time (use RFC3339)"})
		return services.TournamentParams{}, false
	}
	return services.TournamentParams{
		ID:                r.ID,
		GameID:            r.GameID,
		PrizePool:         r.PrizePool,
		EntryFee:          r.EntryFee,
		MaxParticipants:   r.MaxParticipants,
		RegistrationStart: regStart,
		RegistrationEnd:   regEnd,
		StartTime:         start,
	}, true
}

func SetupTournamentRoutes(app *fiber.App, tournaments *services.TournamentService) {
	// Read-only routes — behind Gateway auth only.
	app.Get("/tournaments/:id", func(c *fiber.Ctx) error {
		t, err := tournaments.GetTournament(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	})
	app.Get("/tournaments/:id/participants", func(c *fiber.Ctx) error {
		parts, err := tournaments.GetParticipants(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(parts)
	})
	app.Get("/tournaments/:id/winners", func(c *fiber.Ctx) error {
		winners, err := tournaments.GetWinners(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"winners": winners})
	})
	app.Get("/tournaments/:id/distribution", func(c *fiber.Ctx) error {
		d, err := tournaments.GetDistribution(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(d)
	})
	app.Get("/tournaments/:id/entry-fees", func(c *fiber.Ctx) error {
		fees, err := tournaments.ParticipantEntryFees(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fees)
	})
	app.Get("/tournaments/:id/events", func(c *fiber.Ctx) error {
		events, err := tournaments.EventsByAggregate(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(events)
	})

	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/tournaments/creator", func(c *fiber.Ctx) error {
		var req tournamentRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		p, ok := req.params(c)
		if !ok {
			return nil
		}
		t, err := tournaments.CreateCreatorTournament(c.Context(), p, middleware.CallerID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(t)
	})

	secured.Post("/tournaments/community", func(c *fiber.Ctx) error {
		var req tournamentRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		p, ok := req.params(c)
		if !ok {
			return nil
		}
		t, err := tournaments.CreateCommunityTournament(c.Context(), p, middleware.CallerID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(t)
	})

	secured.Post("/tournaments/platform", func(c *fiber.Ctx) error {
		var req tournamentRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		p, ok := req.params(c)
		if !ok {
			return nil
		}
		t, err := tournaments.CreatePlatformTournament(c.Context(), p, middleware.CallerID(c), middleware.IsAdmin(c))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(t)
	})

	secured.Put("/tournaments/:id/distribution", func(c *fiber.Ctx) error {
		var req models.Distribution
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := tournaments.SetDistribution(c.Context(), c.Params("id"), req, middleware.CallerID(c), middleware.IsAdmin(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "distribution updated"})
	})

	secured.Post("/tournaments/:id/register", func(c *fiber.Ctx) error {
		if err := tournaments.Register(c.Context(), c.Params("id"), middleware.CallerID(c)); err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(fiber.Map{"message": "registered"})
	})

	secured.Post("/tournaments/:id/pool", func(c *fiber.Ctx) error {
		var req struct {
			Amount int64 `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := tournaments.AddToPrizePool(c.Context(), c.Params("id"), req.Amount, middleware.CallerID(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "pool increased"})
	})

	secured.Post("/tournaments/:id/start", func(c *fiber.Ctx) error {
		if err := tournaments.StartTournament(c.Context(), c.Params("id"), middleware.CallerID(c), middleware.IsAdmin(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "tournament started"})
	})

	secured.Post("/tournaments/:id/complete", func(c *fiber.Ctx) error {
		var req struct {
			First  string `json:"first"`
			Second string `json:"second"`
			Third  string `json:"third"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := tournaments.CompleteTournament(c.Context(), c.Params("id"),
			req.First, req.Second, req.Third, middleware.CallerID(c), middleware.IsAdmin(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "tournament completed"})
	})

	secured.Post("/tournaments/:id/cancel", func(c *fiber.Ctx) error {
		var req struct {
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := tournaments.CancelTournament(c.Context(), c.Params("id"), req.Reason, middleware.CallerID(c), middleware.IsAdmin(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "tournament cancelled"})
	})
}
