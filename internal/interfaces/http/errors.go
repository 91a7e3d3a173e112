package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/apiclient"
)

// statusOf traduce un fallo del backend o de validación al estado HTTP del panel.
// Errores de red o 5xx del backend se exponen como 502.
func statusOf(status int, err error, errs []string) int {
	switch {
	case len(errs) > 0 || domain.IsValidationError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case domain.IsAuthError(err):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	}
	if status == 0 {
		status = domain.StatusOf(err)
	}
	if status >= 400 && status < 500 {
		return status
	}
	return fiber.StatusBadGateway
}

func codeOf(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "VALIDATION"
	case fiber.StatusUnauthorized:
		return CodeUnauthenticated
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusBadGateway:
		return "BACKEND_ERROR"
	default:
		return http.StatusText(status)
	}
}

// writeError responde con dto.ErrorResponse. Un 401 incluye el destino de login.
func writeError(c *fiber.Ctx, status int, msg string, errs []string) error {
	out := dto.ErrorResponse{Code: codeOf(status), Message: msg, Errors: errs}
	if status == fiber.StatusUnauthorized {
		out.Redirect = PathLogin
	}
	return c.Status(status).JSON(out)
}

// writeErr responde un error de lectura; def se usa si err no trae mensaje.
func writeErr(c *fiber.Ctx, err error, def string) error {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return writeError(c, fiber.StatusBadRequest, vErr.Error(), vErr.Errors)
	}
	return writeError(c, statusOf(0, err, nil), apiclient.ErrorMessage(err, def), nil)
}

// writeResult responde un resultado etiquetado: éxito con okStatus, fallo con el estado traducido.
func writeResult[T any](c *fiber.Ctx, res dto.Result[T], okStatus int) error {
	if res.Success {
		return c.Status(okStatus).JSON(res)
	}
	return writeError(c, statusOf(res.Status, res.Err, res.Errors), res.Error, res.Errors)
}
