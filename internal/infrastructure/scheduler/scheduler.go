// Package scheduler ejecuta tareas periódicas del panel (vencimiento del token, GC de la caché).
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job tarea periódica. Run recibe el contexto del scheduler.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler envoltorio de cron con logging y parada ordenada.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
	jobs []Job

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// New registra jobs con la expresión spec (5 campos o descriptores como "@every 1m").
// Una ejecución que aún no termina hace que la siguiente se salte.
func New(spec string, log zerolog.Logger, jobs ...Job) (*Scheduler, error) {
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: c, log: log, jobs: jobs, ctx: ctx, cancel: cancel}
	for _, j := range jobs {
		if _, err := c.AddFunc(spec, func() { s.run(s.ctx, j) }); err != nil {
			cancel()
			return nil, fmt.Errorf("scheduler: expresión %q: %w", spec, err)
		}
	}
	return s, nil
}

// Start arranca el scheduler en su propia goroutine.
func (s *Scheduler) Start() {
	s.log.Info().Int("jobs", len(s.jobs)).Msg("scheduler: iniciado")
	s.cron.Start()
}

// Stop detiene el scheduler y espera a los jobs en curso o a que ctx venza.
func (s *Scheduler) Stop(ctx context.Context) error {
	var done context.Context
	s.once.Do(func() {
		done = s.cron.Stop()
		s.cancel()
	})
	if done == nil {
		return nil
	}
	select {
	case <-done.Done():
		s.log.Info().Msg("scheduler: detenido")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow ejecuta todos los jobs una vez, en orden y de forma síncrona.
func (s *Scheduler) RunNow(ctx context.Context) {
	for _, j := range s.jobs {
		s.run(ctx, j)
	}
}

func (s *Scheduler) run(ctx context.Context, j Job) {
	if err := j.Run(ctx); err != nil {
		s.log.Error().Err(err).Str("job", j.Name).Msg("scheduler: job fallido")
		return
	}
	s.log.Debug().Str("job", j.Name).Msg("scheduler: job ejecutado")
}

// cronLogger adapta zerolog a cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
