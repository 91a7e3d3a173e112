// Package dashboard arma los indicadores del panel de bienvenida.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/application/query"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/apiclient"
)

// KeyDashboard clave de caché de los indicadores.
var KeyDashboard = query.NewKey("dashboard")

// Getter la parte del cliente HTTP que usa el servicio.
type Getter interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

// CustomerLister fuente de filas de clientes (las consultas cacheadas).
type CustomerLister interface {
	List(ctx context.Context) ([]dto.CustomerRow, error)
}

// SimulatedSource proveedor de datos de ejemplo. Solo se consulta con la bandera activa.
type SimulatedSource interface {
	SimulatedStats(now time.Time) dto.DashboardStats
}

// Options configuración del servicio.
type Options struct {
	StatsPath string          // endpoint de estadísticas; vacío = calcular desde clientes
	Simulated SimulatedSource // nil = sin datos simulados
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Service indicadores del dashboard, cacheados en la capa de consultas.
type Service struct {
	api       Getter
	cache     *query.Client
	customers CustomerLister
	opts      Options
	now       func() time.Time
}

// NewService construye el servicio.
func NewService(api Getter, cache *query.Client, customers CustomerLister, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{api: api, cache: cache, customers: customers, opts: opts, now: now}
}

// Stats indicadores normalizados, desde caché si están frescos.
func (s *Service) Stats(ctx context.Context) (dto.DashboardStats, error) {
	return query.Read(ctx, s.cache, KeyDashboard, s.load)
}

// Refresh descarta la caché y vuelve a leer.
func (s *Service) Refresh(ctx context.Context) (dto.DashboardStats, error) {
	s.cache.Remove(KeyDashboard)
	return s.Stats(ctx)
}

func (s *Service) load(ctx context.Context) (dto.DashboardStats, error) {
	stats, err := s.fromSource(ctx)
	if err == nil {
		return stats, nil
	}
	if s.opts.Simulated != nil {
		s.opts.Logger.Warn().Err(err).Msg("dashboard: backend no disponible, usando datos simulados")
		return s.opts.Simulated.SimulatedStats(s.now()), nil
	}
	return dto.DashboardStats{}, err
}

func (s *Service) fromSource(ctx context.Context) (dto.DashboardStats, error) {
	if s.opts.StatsPath != "" {
		raw, err := s.api.Get(ctx, s.opts.StatsPath)
		if err != nil {
			return dto.DashboardStats{}, fmt.Errorf("dashboard: %s: %w", s.opts.StatsPath, err)
		}
		return Normalize(apiclient.Unwrap(raw), s.now()), nil
	}

	rows, err := s.customers.List(ctx)
	if err != nil {
		return dto.DashboardStats{}, err
	}
	activos := 0
	for _, r := range rows {
		if r.Estado == entity.EstadoActivo {
			activos++
		}
	}
	return dto.DashboardStats{
		ClientesActivos:     activos,
		UltimaActualizacion: s.now().UTC().Format(time.RFC3339),
	}, nil
}

// Normalize lee los indicadores aceptando nombres en español o inglés.
// Un valor ausente o cero pasa al siguiente alias; si ninguno aplica queda en cero.
func Normalize(raw json.RawMessage, now time.Time) dto.DashboardStats {
	return dto.DashboardStats{
		ClientesActivos:     firstInt(raw, "clientesActivos", "activeClients", "clients"),
		RutasActivas:        firstInt(raw, "rutasActivas", "activeRoutes", "routes"),
		TasaConversion:      firstInt(raw, "tasaConversion", "conversionRate", "conversion"),
		ReportesGenerados:   firstInt(raw, "reportesGenerados", "generatedReports", "reports"),
		UltimaActualizacion: firstString(raw, now.UTC().Format(time.RFC3339), "ultimaActualizacion", "lastUpdate"),
		Simulado:            gjson.GetBytes(raw, "simulado").Bool(),
	}
}

func firstInt(raw json.RawMessage, paths ...string) int {
	for _, p := range paths {
		r := gjson.GetBytes(raw, p)
		if r.Exists() && r.Int() != 0 {
			return int(r.Int())
		}
	}
	return 0
}

func firstString(raw json.RawMessage, def string, paths ...string) string {
	if v, ok := apiclient.LookupString(raw, paths...); ok {
		return v
	}
	return def
}
