package fixtures

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panel-clientes/pkg/jwt"
)

const localUsername = "username"

// requireBearer valida el Bearer Token JWT emitido por el backend simulado.
// Las respuestas de error siguen el formato {success:false, error} del backend real.
func requireBearer(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fail(c, fiber.StatusUnauthorized, "Token no proporcionado")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fail(c, fiber.StatusUnauthorized, "Formato de token inválido")
		}
		tok := strings.TrimSpace(parts[1])
		if tok == "" {
			return fail(c, fiber.StatusUnauthorized, "Token no proporcionado")
		}
		claims, err := jwt.Parse(secret, tok)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "Token inválido o expirado")
		}
		c.Locals(localUsername, claims.Username)
		return c.Next()
	}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func ok(c *fiber.Ctx, status int, data any, msg string) error {
	body := fiber.Map{"success": true}
	if data != nil {
		body["data"] = data
	}
	if msg != "" {
		body["message"] = msg
	}
	return c.Status(status).JSON(body)
}
