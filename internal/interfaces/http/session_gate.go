package http

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
)

// Códigos y mensajes de la compuerta de sesión.
const (
	CodeAuthResolving   = "AUTH_RESOLVING"
	CodeUnauthenticated = "UNAUTHENTICATED"
	MsgResolving        = "Verificando autenticación..."
	MsgLoginRequerido   = "Debes iniciar sesión para continuar"

	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

// SessionState la parte de la sesión que consulta la compuerta.
type SessionState interface {
	State() entity.SessionState
	IsAuthenticated() bool
}

// SessionGate protege las rutas del panel.
// Mientras la sesión se resuelve responde 503; sin sesión redirige a /login?from=<ruta original>
// (los clientes JSON reciben 401 con el mismo destino en redirect).
func SessionGate(sess SessionState) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch sess.State() {
		case entity.SessionResolving, entity.SessionAuthenticating:
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code: CodeAuthResolving, Message: MsgResolving,
			})
		case entity.SessionAuthenticated:
			if sess.IsAuthenticated() {
				return c.Next()
			}
		}
		return unauthenticated(c, LoginRedirect(c.OriginalURL()))
	}
}

// LoginRedirect destino de login que recuerda la ruta original.
func LoginRedirect(from string) string {
	return PathLogin + "?from=" + url.QueryEscape(from)
}

// SafeRedirect devuelve from si es una ruta local del panel, si no /dashboard.
func SafeRedirect(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return PathDashboard
	}
	if from == PathLogin || strings.HasPrefix(from, PathLogin+"?") {
		return PathDashboard
	}
	return from
}

func unauthenticated(c *fiber.Ctx, redirect string) error {
	if wantsJSON(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code: CodeUnauthenticated, Message: MsgLoginRequerido, Redirect: redirect,
		})
	}
	return c.Redirect(redirect, fiber.StatusFound)
}

// wantsJSON false solo cuando el cliente prefiere HTML (navegador).
func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) != fiber.MIMETextHTML
}
