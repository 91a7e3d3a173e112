package http

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panel-clientes/internal/application/clientes"
	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/pdf"
)

// CustomerQueries lecturas cacheadas y mutaciones de clientes.
type CustomerQueries interface {
	List(ctx context.Context) ([]dto.CustomerRow, error)
	Get(ctx context.Context, id int64) (dto.CustomerRow, error)
	Create(ctx context.Context, in dto.CustomerRequest) dto.Result[*entity.Customer]
	Update(ctx context.Context, id int64, in dto.CustomerRequest) dto.Result[*entity.Customer]
	Delete(ctx context.Context, id int64) dto.Result[bool]
}

// ReportGenerator genera el reporte PDF de clientes.
type ReportGenerator interface {
	Generate(ctx context.Context, data pdf.ReportData) ([]byte, error)
}

// CustomerHandler tabla, detalle, mapa, reporte y mutaciones de clientes (protegido).
type CustomerHandler struct {
	q        CustomerQueries
	reports  ReportGenerator
	sess     SessionStore
	panelURL string
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(q CustomerQueries, reports ReportGenerator, sess SessionStore, panelURL string) *CustomerHandler {
	return &CustomerHandler{q: q, reports: reports, sess: sess, panelURL: panelURL}
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "id inválido", nil)
}

// List GET /clientes?page=1&size=10&sort=razonsocial&order=asc&q=texto&estado=Activo
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	var req dto.PageRequest
	if err := c.QueryParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "parámetros de consulta inválidos", nil)
	}
	rows, err := h.q.List(c.UserContext())
	if err != nil {
		return writeErr(c, err, clientes.MsgErrorCargar)
	}
	return c.JSON(clientes.Paginate(rows, req))
}

// GetByID GET /clientes/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	row, err := h.q.Get(c.UserContext(), id)
	if err != nil {
		return writeErr(c, err, clientes.MsgClienteNoHallado)
	}
	return c.JSON(row)
}

// Location GET /clientes/:id/mapa
func (h *CustomerHandler) Location(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	row, err := h.q.Get(c.UserContext(), id)
	if err != nil {
		return writeErr(c, err, clientes.MsgClienteNoHallado)
	}
	return c.JSON(clientes.Location(row))
}

// Create POST /clientes
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, fiber.StatusBadRequest, "cuerpo inválido", nil)
	}
	return writeResult(c, h.q.Create(c.UserContext(), in), fiber.StatusCreated)
}

// Update PUT /clientes/:id
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.CustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, fiber.StatusBadRequest, "cuerpo inválido", nil)
	}
	return writeResult(c, h.q.Update(c.UserContext(), id, in), fiber.StatusOK)
}

// Delete DELETE /clientes/:id
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	return writeResult(c, h.q.Delete(c.UserContext(), id), fiber.StatusOK)
}

// ExportPDF GET /clientes/export.pdf con los mismos filtros y orden que la tabla, sin paginar.
func (h *CustomerHandler) ExportPDF(c *fiber.Ctx) error {
	var req dto.PageRequest
	if err := c.QueryParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "parámetros de consulta inválidos", nil)
	}
	rows, err := h.q.List(c.UserContext())
	if err != nil {
		return writeErr(c, err, clientes.MsgErrorCargar)
	}
	data := pdf.ReportData{
		GeneratedAt: time.Now(),
		PanelURL:    h.panelURL,
		Rows:        clientes.Filter(rows, req),
	}
	if u := h.sess.CurrentUser(); u != nil {
		data.GeneratedBy = u.DisplayName
		if data.GeneratedBy == "" {
			data.GeneratedBy = u.Username
		}
	}
	out, err := h.reports.Generate(c.UserContext(), data)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "No se pudo generar el reporte", nil)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="clientes.pdf"`)
	return c.Send(out)
}
