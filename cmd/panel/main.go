package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/panel-clientes/internal/application/auth"
	"github.com/jhoicas/panel-clientes/internal/application/clientes"
	"github.com/jhoicas/panel-clientes/internal/application/dashboard"
	"github.com/jhoicas/panel-clientes/internal/application/query"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/apiclient"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/fixtures/simulated"
	infrapdf "github.com/jhoicas/panel-clientes/internal/infrastructure/pdf"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/scheduler"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/panel-clientes/internal/interfaces/http"
	"github.com/jhoicas/panel-clientes/pkg/config"
	"github.com/jhoicas/panel-clientes/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.API.BaseURL).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando panel")

	ctx := context.Background()
	kv, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de sesión")
	}
	defer func() {
		if err := kv.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("cerrar almacenamiento de sesión")
		}
	}()

	api := apiclient.New(apiclient.Options{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		RateLimitPerSec: cfg.API.RateLimitPerSec,
		Environment:     cfg.App.Env,
		Logger:          log.Component("apiclient"),
	})
	session := auth.NewStore(api, kv, auth.Options{
		TokenRefresh: cfg.Features.TokenRefresh,
		Logger:       log.Component("auth"),
	})
	// Un 401 del backend cierra la sesión antes de devolver el error.
	api.SetTokenSource(session)
	api.OnUnauthorized(session.Logout)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := query.NewPrometheusMetrics(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("registrar métricas")
	}
	cache := query.New(query.Options{
		StaleTime:  cfg.Query.StaleTime,
		ExpireTime: cfg.Query.ExpireTime,
		Retries:    cfg.Query.Retries,
		RetryBase:  cfg.Query.RetryBase,
		RetryMax:   cfg.Query.RetryMax,
		Metrics:    metrics,
		Logger:     log.Component("query"),
	})
	session.OnLogout(cache.Clear)

	queries := clientes.NewQueries(clientes.NewService(api, log.Component("clientes")), cache)

	dashOpts := dashboard.Options{
		StatsPath: cfg.Dashboard.StatsPath,
		Logger:    log.Component("dashboard"),
	}
	if cfg.Features.SimulatedData {
		log.Warn().Msg("FEATURE_SIMULATED_DATA activo: el dashboard puede mostrar datos de ejemplo")
		dashOpts.Simulated = simulated.New(0)
	}
	dash := dashboard.NewService(api, cache, queries, dashOpts)

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler.Spec, log.Component("scheduler"),
			scheduler.ExpiryJob(session, log.Component("scheduler")),
			scheduler.GCJob(cache, log.Component("scheduler")),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("scheduler")
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = sched.Stop(stopCtx)
		}()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.API.Timeout + 10*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Panel de Clientes",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Session:   session,
		Customers: queries,
		Dashboard: dash,
		Reports:   infrapdf.NewCustomerReportGenerator(),
		Health:    api,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		PanelURL:  cfg.HTTP.PublicURL,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	// Hasta que termine la rehidratación las rutas protegidas responden 503.
	go func() {
		if err := session.Rehydrate(ctx); err != nil {
			log.Error().Err(err).Msg("rehidratar sesión")
			return
		}
		log.Info().Str("state", session.State().String()).Msg("sesión resuelta")
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("panel detenido")
}
