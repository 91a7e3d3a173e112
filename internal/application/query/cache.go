// Package query es la capa de caché de lecturas: ventana de frescura, lecturas
// concurrentes coalescidas, reintentos con backoff e invalidación tras mutaciones.
package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/panel-clientes/internal/domain"
)

// Options ventanas y política de reintentos.
type Options struct {
	StaleTime  time.Duration // tiempo durante el cual una entrada se sirve sin volver a pedirla
	ExpireTime time.Duration // tras este tiempo GC elimina la entrada
	Retries    int           // reintentos tras el primer intento
	RetryBase  time.Duration
	RetryMax   time.Duration
	Metrics    Metrics
	Logger     zerolog.Logger
	Now        func() time.Time
	Sleep      func(ctx context.Context, d time.Duration) error
}

type entry struct {
	key       Key
	value     any
	fetchedAt time.Time
	staleAt   time.Time
	expireAt  time.Time
	invalid   bool
}

// Client caché de consultas. Seguro para uso concurrente.
type Client struct {
	opts    Options
	metrics Metrics
	log     zerolog.Logger
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
	group   singleflight.Group

	mu       sync.Mutex
	entries  map[string]*entry
	seq      uint64            // avanza en cada invalidación
	gen      map[string]uint64 // generación de las claves en caché o en vuelo; el resto usa seq
	fetching map[string]Key
	inflight map[string]int
}

// New construye la caché. Duraciones en cero toman 5 min / 10 min / 1 s / 30 s.
func New(opts Options) *Client {
	if opts.StaleTime <= 0 {
		opts.StaleTime = 5 * time.Minute
	}
	if opts.ExpireTime <= 0 {
		opts.ExpireTime = 10 * time.Minute
	}
	if opts.ExpireTime < opts.StaleTime {
		opts.ExpireTime = opts.StaleTime
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = time.Second
	}
	if opts.RetryMax <= 0 {
		opts.RetryMax = 30 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	c := &Client{
		opts:     opts,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		now:      opts.Now,
		sleep:    opts.Sleep,
		entries:  make(map[string]*entry),
		gen:      make(map[string]uint64),
		fetching: make(map[string]Key),
		inflight: make(map[string]int),
	}
	if c.metrics == nil {
		c.metrics = NoopMetrics{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.sleep == nil {
		c.sleep = sleepCtx
	}
	return c
}

// Read devuelve el valor de key: desde caché si está fresco, si no ejecuta fetch.
// Lecturas concurrentes de la misma clave comparten una sola llamada.
func Read[T any](ctx context.Context, c *Client, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.read(ctx, key, func(ctx context.Context) (any, error) { return fetch(ctx) })
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query: tipo inesperado en caché para %s: %T", key, v)
	}
	return t, nil
}

// Peek valor en caché (fresco o no) sin ir al backend.
func Peek[T any](c *Client, key Key) (T, bool) {
	var zero T
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	c.mu.Unlock()
	if !ok {
		return zero, false
	}
	t, ok := e.value.(T)
	return t, ok
}

// Effects claves afectadas por una mutación exitosa.
type Effects struct {
	Invalidate []Key // se marcan para volver a pedirse
	Remove     []Key // se eliminan de la caché
}

// Mutate ejecuta la escritura; si tiene éxito aplica los efectos antes de devolver.
// Si falla, la caché no se toca.
func Mutate[T any](ctx context.Context, c *Client, fn func(ctx context.Context) (T, error), fx Effects) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	for _, k := range fx.Invalidate {
		c.Invalidate(k)
	}
	for _, k := range fx.Remove {
		c.Remove(k)
	}
	return v, nil
}

func (c *Client) read(ctx context.Context, key Key, fetch func(ctx context.Context) (any, error)) (any, error) {
	k := key.String()
	family := key.Family()

	c.mu.Lock()
	if e, ok := c.entries[k]; ok && !e.invalid && c.now().Before(e.staleAt) {
		c.mu.Unlock()
		c.metrics.Hit(family)
		return e.value, nil
	}
	gen := c.genOf(k)
	c.mu.Unlock()
	c.metrics.Miss(family)

	// una lectura posterior a una invalidación no se une a la llamada anterior
	ch := c.group.DoChan(fmt.Sprintf("%s#%d", k, gen), func() (any, error) {
		c.mu.Lock()
		c.fetching[k] = key
		c.inflight[k]++
		c.mu.Unlock()
		defer c.doneFetching(k)

		// la llamada compartida no depende de la cancelación del primer lector
		v, err := c.fetchWithRetry(context.WithoutCancel(ctx), key, fetch)
		if err != nil {
			return nil, err
		}
		c.store(key, v, gen)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

func (c *Client) fetchWithRetry(ctx context.Context, key Key, fetch func(ctx context.Context) (any, error)) (any, error) {
	family := key.Family()
	for attempt := 0; ; attempt++ {
		v, err := fetch(ctx)
		c.metrics.Fetch(family, err)
		if err == nil {
			return v, nil
		}
		if attempt >= c.opts.Retries || !Retryable(err) {
			return nil, err
		}
		delay := Backoff(attempt, c.opts.RetryBase, c.opts.RetryMax)
		c.metrics.Retry(family)
		c.log.Debug().Str("key", key.String()).Int("attempt", attempt+1).Dur("delay", delay).Err(err).
			Msg("query: reintentando lectura")
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// genOf generación vigente de k. Requiere c.mu.
func (c *Client) genOf(k string) uint64 {
	if g, ok := c.gen[k]; ok {
		return g
	}
	return c.seq
}

// store guarda el resultado. Si la clave se invalidó mientras se leía, queda marcado como inválido
// y no reemplaza una entrada existente.
func (c *Client) store(key Key, v any, gen uint64) {
	k := key.String()
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.genOf(k)
	if _, exists := c.entries[k]; exists && current != gen {
		return
	}
	c.gen[k] = current
	c.entries[k] = &entry{
		key:       key,
		value:     v,
		fetchedAt: now,
		staleAt:   now.Add(c.opts.StaleTime),
		expireAt:  now.Add(c.opts.ExpireTime),
		invalid:   current != gen,
	}
}

func (c *Client) doneFetching(k string) {
	c.mu.Lock()
	c.inflight[k]--
	if c.inflight[k] <= 0 {
		delete(c.inflight, k)
		delete(c.fetching, k)
		if _, cached := c.entries[k]; !cached {
			delete(c.gen, k)
		}
	}
	c.mu.Unlock()
}

// Invalidate marca como no frescas todas las entradas de la familia prefix,
// incluidas las lecturas en vuelo. Devuelve cuántas entradas marcó.
func (c *Client) Invalidate(prefix Key) int {
	c.mu.Lock()
	c.seq++
	n := 0
	for k, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.invalid = true
			c.gen[k] = c.seq
			n++
		}
	}
	for k, key := range c.fetching {
		if key.HasPrefix(prefix) {
			c.gen[k] = c.seq
		}
	}
	c.mu.Unlock()
	if n > 0 {
		c.metrics.Invalidate(prefix.Family(), n)
	}
	return n
}

// Remove elimina de la caché las entradas de la familia prefix.
func (c *Client) Remove(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	n := 0
	for k, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, k)
			delete(c.gen, k)
			n++
		}
	}
	for k, key := range c.fetching {
		if key.HasPrefix(prefix) {
			c.gen[k] = c.seq
		}
	}
	return n
}

// Clear vacía la caché (p. ej. al cerrar sesión).
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.gen = make(map[string]uint64)
	for k := range c.fetching {
		c.gen[k] = c.seq
	}
	c.entries = make(map[string]*entry)
}

// IsFetching indica si hay alguna lectura en vuelo bajo la familia prefix.
func (c *Client) IsFetching(prefix Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.fetching {
		if key.HasPrefix(prefix) {
			return true
		}
	}
	return false
}

// GC elimina las entradas vencidas. Devuelve cuántas eliminó.
func (c *Client) GC() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expireAt) {
			delete(c.entries, k)
			n++
		}
	}
	for k := range c.gen {
		if _, cached := c.entries[k]; !cached {
			if _, busy := c.fetching[k]; !busy {
				delete(c.gen, k)
			}
		}
	}
	return n
}

// Len cantidad de entradas en caché.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Retryable indica si un fallo de lectura admite reintento. Autenticación,
// validación, 404 y cancelación se propagan de inmediato.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case domain.IsAuthError(err), domain.IsValidationError(err):
		return false
	case errors.Is(err, domain.ErrNotFound):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// Backoff espera antes del reintento attempt (0-based): min(base·2^attempt, max).
func Backoff(attempt int, base, maxDelay time.Duration) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= maxDelay {
			return maxDelay
		}
	}
	if d > maxDelay {
		return maxDelay
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
