// mockapi levanta en memoria el backend de usuarios y clientes para desarrollo local.
//
// Uso: go run ./cmd/mockapi
// Usuario sembrado: admin / admin123. Apuntar el panel con API_BASE_URL=http://localhost:8090
// y DASHBOARD_STATS_PATH=/api/dashboard/stats.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/panel-clientes/internal/infrastructure/fixtures"
	"github.com/jhoicas/panel-clientes/pkg/config"
	"github.com/jhoicas/panel-clientes/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	backend, err := fixtures.NewBackend(fixtures.BackendOptions{
		JWTSecret:   cfg.MockAPI.JWTSecret,
		SeedDemo:    true,
		WithStats:   true,
		WithRefresh: true,
		Logger:      log.Component("mockapi"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("backend simulado")
	}

	app := backend.App()

	addr := fmt.Sprintf(":%d", cfg.MockAPI.Port)
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()
	log.Info().Str("addr", addr).Str("usuario", fixtures.DemoUsername).Msg("backend simulado escuchando")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
}
