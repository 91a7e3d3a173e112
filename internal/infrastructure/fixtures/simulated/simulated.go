// Package simulated provee indicadores de ejemplo para el dashboard.
// El panel solo lo usa con FEATURE_SIMULATED_DATA=true; no depende del backend simulado.
package simulated

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
)

// Valores base de los indicadores simulados.
const (
	BaseClientesActivos   = 248
	BaseRutasActivas      = 15
	BaseTasaConversion    = 92
	BaseReportesGenerados = 34
)

// Stats proveedor de indicadores de ejemplo con una variación aleatoria pequeña.
type Stats struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New seed fija = salida reproducible (tests); seed 0 usa una semilla aleatoria.
func New(seed uint64) *Stats {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Stats{rnd: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// SimulatedStats siempre marca Simulado=true.
func (s *Stats) SimulatedStats(now time.Time) dto.DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasa := BaseTasaConversion + s.jitter(3)
	if tasa > 100 {
		tasa = 100
	}
	return dto.DashboardStats{
		ClientesActivos:     BaseClientesActivos + s.jitter(10),
		RutasActivas:        BaseRutasActivas + s.jitter(2),
		TasaConversion:      tasa,
		ReportesGenerados:   BaseReportesGenerados + s.jitter(5),
		UltimaActualizacion: now.UTC().Format(time.RFC3339),
		Simulado:            true,
	}
}

// jitter entero en [-n, n].
func (s *Stats) jitter(n int) int {
	return s.rnd.IntN(2*n+1) - n
}
