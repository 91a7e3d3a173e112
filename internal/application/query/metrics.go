package query

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics eventos de la caché de consultas.
type Metrics interface {
	Hit(family string)
	Miss(family string)
	Fetch(family string, err error)
	Retry(family string)
	Invalidate(family string, n int)
}

// NoopMetrics descarta los eventos.
type NoopMetrics struct{}

func (NoopMetrics) Hit(string)             {}
func (NoopMetrics) Miss(string)            {}
func (NoopMetrics) Fetch(string, error)    {}
func (NoopMetrics) Retry(string)           {}
func (NoopMetrics) Invalidate(string, int) {}

// PrometheusMetrics contadores panel_query_* etiquetados por familia de clave.
type PrometheusMetrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	retries       *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewPrometheusMetrics crea y registra los contadores en reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panel",
			Subsystem: "query",
			Name:      name,
			Help:      help,
		}, labels)
	}
	m := &PrometheusMetrics{
		hits:          counter("hits_total", "Lecturas servidas desde caché dentro de la ventana de frescura", "family"),
		misses:        counter("misses_total", "Lecturas que requirieron ir al backend", "family"),
		fetches:       counter("fetches_total", "Llamadas al backend por intento", "family", "result"),
		retries:       counter("retries_total", "Reintentos de lectura tras fallos transitorios", "family"),
		invalidations: counter("invalidations_total", "Entradas invalidadas por mutaciones", "family"),
	}
	for _, c := range []prometheus.Collector{m.hits, m.misses, m.fetches, m.retries, m.invalidations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) Hit(family string)  { m.hits.WithLabelValues(family).Inc() }
func (m *PrometheusMetrics) Miss(family string) { m.misses.WithLabelValues(family).Inc() }

func (m *PrometheusMetrics) Fetch(family string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(family, result).Inc()
}

func (m *PrometheusMetrics) Retry(family string) { m.retries.WithLabelValues(family).Inc() }

func (m *PrometheusMetrics) Invalidate(family string, n int) {
	m.invalidations.WithLabelValues(family).Add(float64(n))
}
