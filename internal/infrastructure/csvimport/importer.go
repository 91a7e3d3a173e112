package csvimport

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/panel-clientes/internal/application/clientes"
	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
)

// Creator crea un cliente (el servicio de clientes o sus consultas cacheadas).
type Creator interface {
	Create(ctx context.Context, in dto.CustomerRequest) dto.Result[*entity.Customer]
}

// Summary resultado de una importación.
type Summary struct {
	Created int
	Failed  []RowError
}

// Import crea cada fila en orden. Con dryRun solo valida, sin llamadas de red.
// Un contexto cancelado detiene la importación y devuelve lo hecho hasta ahí.
func Import(ctx context.Context, c Creator, rows []Row, dryRun bool, log zerolog.Logger) (Summary, error) {
	var s Summary
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		if dryRun {
			if errs := clientes.ValidateCustomer(r.Request); len(errs) > 0 {
				s.Failed = append(s.Failed, RowError{Line: r.Line, Err: errors.New(strings.Join(errs, "; "))})
				continue
			}
			s.Created++
			continue
		}
		res := c.Create(ctx, r.Request)
		if !res.Success {
			log.Warn().Int("line", r.Line).Str("error", res.Error).Msg("importar: fila rechazada")
			s.Failed = append(s.Failed, RowError{Line: r.Line, Err: errors.New(res.Error)})
			continue
		}
		s.Created++
		log.Debug().Int("line", r.Line).Int64("id", res.Data.ID).Msg("importar: cliente creado")
	}
	return s, nil
}
