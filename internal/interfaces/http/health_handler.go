package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
)

// HealthChecker conexión con el backend externo.
type HealthChecker interface {
	CheckHealth(ctx context.Context) dto.HealthResponse
}

// Health GET /health: 200 si el backend responde, 503 si no.
func Health(hc HealthChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out := hc.CheckHealth(c.UserContext())
		if out.Status != "connected" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(out)
		}
		return c.JSON(out)
	}
}
