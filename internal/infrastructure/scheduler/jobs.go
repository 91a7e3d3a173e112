package scheduler

import (
	"context"

	"github.com/rs/zerolog"
)

// ExpiryChecker la parte de la sesión que revisa el vencimiento del token.
type ExpiryChecker interface {
	CheckExpiry(ctx context.Context) bool
}

// Collector caché con recolección de entradas expiradas.
type Collector interface {
	GC() int
}

// ExpiryJob cierra la sesión cuando el exp del token ya pasó.
func ExpiryJob(sess ExpiryChecker, log zerolog.Logger) Job {
	return Job{Name: "token-expiry", Run: func(ctx context.Context) error {
		if sess.CheckExpiry(ctx) {
			log.Info().Msg("scheduler: sesión cerrada por token vencido")
		}
		return nil
	}}
}

// GCJob elimina de la caché las entradas fuera de la ventana de expiración.
func GCJob(cache Collector, log zerolog.Logger) Job {
	return Job{Name: "query-gc", Run: func(context.Context) error {
		if n := cache.GC(); n > 0 {
			log.Debug().Int("removed", n).Msg("scheduler: entradas de caché expiradas")
		}
		return nil
	}}
}
