package apiclient

import (
	"context"
	"time"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain"
)

// CheckHealth consulta GET / del backend. Nunca falla: los errores se informan en el resultado.
func (c *Client) CheckHealth(ctx context.Context) dto.HealthResponse {
	raw, err := c.Get(ctx, "/")
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = domain.ErrNetwork.Error()
		}
		return dto.HealthResponse{
			Status:      "error",
			Message:     msg,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Environment: c.env,
		}
	}
	msg, ok := LookupString(raw, "message")
	if !ok {
		msg = "Backend conectado"
	}
	ts, _ := LookupString(raw, "timestamp")
	env, _ := LookupString(raw, "environment")
	return dto.HealthResponse{
		Status:      "connected",
		Message:     msg,
		Timestamp:   ts,
		Environment: env,
	}
}
