package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panel-clientes/internal/application/auth"
	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
)

// SessionStore la sesión del operador tal como la usan los handlers.
type SessionStore interface {
	SessionState
	Snapshot() entity.Session
	CurrentUser() *entity.User
	Login(ctx context.Context, username, password string) dto.AuthResult
	Register(ctx context.Context, in dto.RegisterRequest) dto.AuthResult
	Logout(ctx context.Context)
}

// AuthHandler login, registro, logout y consulta de la sesión.
type AuthHandler struct {
	sess SessionStore
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(sess SessionStore) *AuthHandler {
	return &AuthHandler{sess: sess}
}

// loginForm acepta JSON o formulario HTML.
type loginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	From     string `json:"from" form:"from"`
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        from  query  string  false  "ruta a la que volver"
// @Param        body  body  dto.LoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.LoginResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginForm
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	from := c.Query("from", in.From)
	res := h.sess.Login(c.UserContext(), in.Username, in.Password)
	return h.respond(c, res, fiber.StatusOK, from)
}

// Register godoc
// @Summary      Registrar operador
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "perfil"
// @Success      201   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.LoginResponse
// @Router       /registro [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res := h.sess.Register(c.UserContext(), in)
	return h.respond(c, res, fiber.StatusCreated, "")
}

// Logout godoc
// @Summary      Cerrar sesión (idempotente)
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.LoginResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.sess.Logout(c.UserContext())
	if !wantsJSON(c) {
		return c.Redirect(PathLogin, fiber.StatusFound)
	}
	return c.JSON(dto.LoginResponse{
		AuthResult: dto.AuthResult{Success: true, Message: "Sesión cerrada"},
		Redirect:   PathLogin,
	})
}

// Session godoc
// @Summary      Estado de la sesión actual
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Router       /session [get]
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	out := dto.SessionResponse{
		IsAuthenticated: h.sess.IsAuthenticated(),
		State:           h.sess.State().String(),
	}
	if u := h.sess.CurrentUser(); u != nil && out.IsAuthenticated {
		resp := dto.UserFromEntity(*u)
		out.User = &resp
	}
	return c.JSON(out)
}

func (h *AuthHandler) respond(c *fiber.Ctx, res dto.AuthResult, okStatus int, from string) error {
	if !res.Success {
		return c.Status(authStatus(res.Error)).JSON(dto.LoginResponse{AuthResult: res})
	}
	dest := SafeRedirect(from)
	if !wantsJSON(c) {
		return c.Redirect(dest, fiber.StatusFound)
	}
	return c.Status(okStatus).JSON(dto.LoginResponse{AuthResult: res, Redirect: dest})
}

// authStatus estado HTTP de un login o registro fallido según su mensaje.
func authStatus(msg string) int {
	switch msg {
	case auth.MsgCredenciales:
		return fiber.StatusUnauthorized
	case auth.MsgErrorConexion, auth.MsgRespuestaInvalida, auth.MsgDatosRegistroInvalid, auth.MsgErrorGuardarSesion:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusBadRequest
	}
}
