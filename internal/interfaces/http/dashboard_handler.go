package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
)

// MsgErrorEstadisticas mensaje cuando no hay indicadores disponibles.
const MsgErrorEstadisticas = "Error al cargar estadísticas"

// DashboardStats indicadores cacheados del panel.
type DashboardStats interface {
	Stats(ctx context.Context) (dto.DashboardStats, error)
	Refresh(ctx context.Context) (dto.DashboardStats, error)
}

// DashboardHandler pantalla de bienvenida: usuario actual e indicadores.
type DashboardHandler struct {
	stats DashboardStats
	sess  SessionStore
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(stats DashboardStats, sess SessionStore) *DashboardHandler {
	return &DashboardHandler{stats: stats, sess: sess}
}

// Get GET /dashboard
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	return h.reply(c, h.stats.Stats)
}

// Refresh POST /dashboard/refresh descarta la caché de indicadores.
func (h *DashboardHandler) Refresh(c *fiber.Ctx) error {
	return h.reply(c, h.stats.Refresh)
}

func (h *DashboardHandler) reply(c *fiber.Ctx, load func(context.Context) (dto.DashboardStats, error)) error {
	stats, err := load(c.UserContext())
	if err != nil {
		return writeErr(c, err, MsgErrorEstadisticas)
	}
	out := dto.DashboardResponse{Stats: stats}
	if u := h.sess.CurrentUser(); u != nil {
		resp := dto.UserFromEntity(*u)
		out.User = &resp
	}
	return c.JSON(out)
}
