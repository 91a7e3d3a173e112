package simulated_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/panel-clientes/internal/infrastructure/fixtures/simulated"
)

func TestSimulatedStats_RangosYBandera(t *testing.T) {
	sim := simulated.New(42)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		s := sim.SimulatedStats(now)
		assert.True(t, s.Simulado)
		assert.InDelta(t, simulated.BaseClientesActivos, s.ClientesActivos, 10)
		assert.InDelta(t, simulated.BaseRutasActivas, s.RutasActivas, 2)
		assert.InDelta(t, simulated.BaseReportesGenerados, s.ReportesGenerados, 5)
		assert.LessOrEqual(t, s.TasaConversion, 100)
		assert.Equal(t, "2026-01-01T00:00:00Z", s.UltimaActualizacion)
	}
}

func TestSimulatedStats_SemillaReproducible(t *testing.T) {
	now := time.Now()
	a, b := simulated.New(7), simulated.New(7)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.SimulatedStats(now), b.SimulatedStats(now))
	}
}
