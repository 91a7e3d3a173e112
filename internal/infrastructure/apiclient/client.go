// Package apiclient es el cliente HTTP del backend externo de usuarios y clientes.
// Inyecta el token Bearer, normaliza los cuerpos de error y fuerza el logout ante un 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/jhoicas/panel-clientes/internal/domain"
)

// Rutas del backend.
const (
	PathLogin     = "/api/usuarios/login"
	PathRegister  = "/api/usuarios/registro"
	PathClientes  = "/api/clientes"
	PathRefresh   = "/api/auth/refresh"
	HeaderRequest = "X-Request-ID"
)

// publicEndpoints rutas que nunca llevan Authorization. Se comparan por subcadena.
var publicEndpoints = []string{"/usuarios/login", "/usuarios/registro"}

// MsgSessionExpired mensaje cuando el backend rechaza el token.
const MsgSessionExpired = "Sesión expirada. Por favor inicia sesión nuevamente."

const maxBodyBytes = 4 << 20

// TokenSource provee el token actual de la sesión ("" si no hay).
type TokenSource interface {
	Token() string
}

// TokenFunc adapta una función a TokenSource.
type TokenFunc func() string

// Token implementa TokenSource.
func (f TokenFunc) Token() string { return f() }

// Options configuración del cliente.
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	RateLimitPerSec float64 // 0 = sin límite
	Environment     string
	HTTPClient      *http.Client // opcional; tests
	Logger          zerolog.Logger
}

// Client cliente HTTP del backend. Seguro para uso concurrente.
type Client struct {
	baseURL    string
	env        string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
}

// New construye el cliente. Sin TokenSource las peticiones salen sin Authorization.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	var limiter *rate.Limiter
	if opts.RateLimitPerSec > 0 {
		burst := int(opts.RateLimitPerSec)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitPerSec), burst)
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		env:        opts.Environment,
		httpClient: hc,
		limiter:    limiter,
		log:        opts.Logger,
	}
}

// SetTokenSource registra el proveedor del token (el store de sesión).
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// OnUnauthorized registra el hook que se ejecuta ante un 401, antes de devolver el error.
func (c *Client) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// BaseURL URL base configurada, sin barra final.
func (c *Client) BaseURL() string { return c.baseURL }

// IsPublicEndpoint indica si la ruta no requiere autenticación.
func IsPublicEndpoint(path string) bool {
	for _, p := range publicEndpoints {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Get GET path.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post POST path con body serializado a JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put PUT path con body serializado a JSON.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Delete DELETE path.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Do ejecuta la petición y devuelve el cuerpo JSON. Un cuerpo vacío se devuelve como null.
// Errores: *domain.NetworkError (transporte), *domain.AuthenticationError (401/403),
// *domain.NotFoundError (404), *domain.HTTPError (resto de no-2xx).
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	reqID := uuid.NewString()
	logger := c.log.With().Str("request_id", reqID).Str("method", method).Str("path", path).Logger()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: serializar body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.NetworkError{Op: method + " " + path, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("apiclient: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequest, reqID)

	public := IsPublicEndpoint(path)
	if !public {
		if tok := c.currentToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("apiclient: fallo de transporte")
		return nil, &domain.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.NetworkError{Op: method + " " + path, Err: fmt.Errorf("leer respuesta: %w", err)}
	}
	logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("apiclient: respuesta")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := c.toError(resp.StatusCode, raw)
		if resp.StatusCode == http.StatusUnauthorized && !public {
			if hook := c.unauthorizedHook(); hook != nil {
				hook(ctx)
			}
		}
		logger.Warn().Int("status", resp.StatusCode).Err(httpErr).Msg("apiclient: respuesta de error")
		return nil, httpErr
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("apiclient: %s %s: %w", method, path, domain.ErrInvalidResponse)
	}
	return json.RawMessage(trimmed), nil
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return ts.Token()
}

func (c *Client) unauthorizedHook() func(context.Context) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onUnauthorized
}

// toError construye el error tipado a partir del estado y el cuerpo ({error} o {message}).
func (c *Client) toError(status int, raw []byte) error {
	msg := errorMessage(raw)
	if msg == "" && status == http.StatusUnauthorized {
		msg = MsgSessionExpired
	}
	base := domain.HTTPError{Status: status, Message: msg}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &domain.AuthenticationError{HTTPError: base}
	case http.StatusNotFound:
		return &domain.NotFoundError{HTTPError: base}
	default:
		return &base
	}
}

func errorMessage(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	for _, key := range []string{"error", "message"} {
		r := gjson.GetBytes(raw, key)
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

// ErrorMessage texto a mostrar para err: su mensaje, o def si no tiene.
func ErrorMessage(err error, def string) string {
	if err == nil {
		return def
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return def
}
