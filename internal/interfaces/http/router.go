package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Session   SessionStore
	Customers CustomerQueries
	Dashboard DashboardStats
	Reports   ReportGenerator
	Health    HealthChecker
	Metrics   http.Handler // nil = sin /metrics
	PanelURL  string       // enlace del QR del reporte
}

// Router registra las rutas del panel.
func Router(app *fiber.App, deps RouterDeps) {
	// Públicas
	app.Get("/health", Health(deps.Health))
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.Session)
	app.Get("/session", authHandler.Session)
	app.Post("/login", authHandler.Login)
	app.Post("/registro", authHandler.Register)
	app.Post("/logout", authHandler.Logout)

	// Protegidas por la compuerta de sesión
	gate := SessionGate(deps.Session)

	dashboard := app.Group("/dashboard", gate)
	dashboardHandler := NewDashboardHandler(deps.Dashboard, deps.Session)
	dashboard.Get("/", dashboardHandler.Get)
	dashboard.Post("/refresh", dashboardHandler.Refresh)

	customers := app.Group("/clientes", gate)
	customerHandler := NewCustomerHandler(deps.Customers, deps.Reports, deps.Session, deps.PanelURL)
	customers.Get("/", customerHandler.List)
	customers.Post("/", customerHandler.Create)
	customers.Get("/export.pdf", customerHandler.ExportPDF)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Get("/:id/mapa", customerHandler.Location)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)
}
