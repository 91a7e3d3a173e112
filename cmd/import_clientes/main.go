// import_clientes carga clientes desde un CSV exportado de una planilla.
// Cada fila pasa por la misma validación que el panel antes de llegar al backend.
//
// Uso: go run ./cmd/import_clientes -file clientes.csv [-encoding latin1|utf8] [-dry-run]
// Credenciales: sesión guardada por el panel, o -user/-password (IMPORT_USERNAME/IMPORT_PASSWORD).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/panel-clientes/internal/application/auth"
	"github.com/jhoicas/panel-clientes/internal/application/clientes"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/apiclient"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/csvimport"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/storage"
	"github.com/jhoicas/panel-clientes/pkg/config"
	"github.com/jhoicas/panel-clientes/pkg/logger"
)

func main() {
	file := flag.String("file", "clientes.csv", "ruta del CSV")
	encoding := flag.String("encoding", csvimport.EncodingLatin1, "codificación del archivo: latin1 | utf8")
	dryRun := flag.Bool("dry-run", false, "solo validar, sin crear clientes")
	user := flag.String("user", os.Getenv("IMPORT_USERNAME"), "usuario del backend")
	password := flag.String("password", os.Getenv("IMPORT_PASSWORD"), "contraseña del backend")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, bad, err := csvimport.Read(f, *encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	for _, b := range bad {
		log.Warn().Int("line", b.Line).Err(b.Err).Msg("fila ilegible")
	}

	api := apiclient.New(apiclient.Options{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		RateLimitPerSec: cfg.API.RateLimitPerSec,
		Environment:     cfg.App.Env,
		Logger:          log.Component("apiclient"),
	})
	svc := clientes.NewService(api, log.Component("clientes"))

	if !*dryRun {
		kv, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("almacenamiento de sesión")
		}
		defer func() {
			if err := kv.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("cerrar almacenamiento de sesión")
			}
		}()

		session := auth.NewStore(api, kv, auth.Options{Logger: log.Component("auth")})
		api.SetTokenSource(session)
		api.OnUnauthorized(session.Logout)
		if err := session.Rehydrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("rehidratar sesión")
		}
		if !session.IsAuthenticated() {
			if res := session.Login(ctx, *user, *password); !res.Success {
				fmt.Fprintf(os.Stderr, "Login: %s\n", res.Error)
				os.Exit(1)
			}
		}
	}

	summary, err := csvimport.Import(ctx, svc, rows, *dryRun, log.Component("import"))
	for _, fe := range summary.Failed {
		fmt.Fprintf(os.Stderr, "%v\n", fe)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Importación interrumpida: %v\n", err)
	}

	verb := "Creados"
	if *dryRun {
		verb = "Válidos"
	}
	fmt.Printf("%s %d de %d clientes (%d ilegibles, %d rechazados)\n",
		verb, summary.Created, len(rows)+len(bad), len(bad), len(summary.Failed))
	if incomplete(err, summary, len(bad)) {
		os.Exit(1)
	}
}

// incomplete indica si la importación dejó filas sin cargar o se interrumpió.
func incomplete(err error, summary csvimport.Summary, unreadable int) bool {
	return err != nil || len(summary.Failed) > 0 || unreadable > 0
}
