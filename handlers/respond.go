// handlers/respond.go
package handlers

import (
	"errors"
	"log"

	"game-ledger-system/services"

	"github.com/gofiber/fiber/v2"
)

// fail maps engine conditions onto HTTP statuses. Anything that is not a
// named condition is a storage or infrastructure error.
func fail(c *fiber.Ctx, err error) error {
	var cond *services.Condition
	if !errors.As(err, &cond) {
		log.Printf("ERROR %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	status := fiber.StatusBadRequest
	switch cond.Code {
	case services.CodeNotFound:
		status = fiber.StatusNotFound
	case services.CodeUnauthorized:
		status = fiber.StatusForbidden
	case services.CodeInvalidState, services.CodeResourceExhausted:
		status = fiber.StatusConflict
	case services.CodeTransferFailed:
		status = fiber.StatusPaymentRequired
	}
	return c.Status(status).JSON(fiber.Map{
		"error": cond.Name,
		"code":  string(cond.Code),
	})
}
