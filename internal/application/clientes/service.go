// Package clientes contiene el servicio de clientes sobre el backend externo,
// su validación de negocio y las consultas cacheadas que consume la presentación.
package clientes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/apiclient"
)

// Mensajes por defecto cuando el backend no informa uno.
const (
	MsgErrorListar     = "Error al obtener clientes"
	MsgErrorObtener    = "Error al obtener cliente"
	MsgErrorCrear      = "Error al crear cliente"
	MsgErrorActualizar = "Error al actualizar cliente"
	MsgErrorEliminar   = "Error al eliminar cliente"
)

// API la parte del cliente HTTP que usa el servicio.
type API interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, path string) (json.RawMessage, error)
}

// Service CRUD tipado de clientes. Ninguna operación devuelve error de Go:
// el resultado indica éxito o fallo.
type Service struct {
	api API
	log zerolog.Logger
}

// NewService construye el servicio.
func NewService(api API, log zerolog.Logger) *Service {
	return &Service{api: api, log: log}
}

func itemPath(id int64) string {
	return fmt.Sprintf("%s/%d", apiclient.PathClientes, id)
}

// List obtiene todos los clientes. Acepta {success, data:[...]} o el arreglo directo.
func (s *Service) List(ctx context.Context) dto.Result[[]entity.Customer] {
	raw, err := s.api.Get(ctx, apiclient.PathClientes)
	if err != nil {
		return failure[[]entity.Customer](err, MsgErrorListar)
	}
	var records []dto.CustomerRecord
	if err := json.Unmarshal(apiclient.Unwrap(raw), &records); err != nil {
		s.log.Error().Err(err).Msg("clientes: respuesta de listado inesperada")
		return dto.FailErr[[]entity.Customer](domain.ErrInvalidResponse.Error(), 0,
			fmt.Errorf("clientes: listar: %w", domain.ErrInvalidResponse))
	}
	out := make([]entity.Customer, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToEntity())
	}
	return dto.Ok(out)
}

// GetByID obtiene un cliente. 404 se informa con Status 404.
func (s *Service) GetByID(ctx context.Context, id int64) dto.Result[*entity.Customer] {
	raw, err := s.api.Get(ctx, itemPath(id))
	if err != nil {
		return failure[*entity.Customer](err, MsgErrorObtener)
	}
	c, err := decodeCustomer(raw)
	if err != nil {
		s.log.Error().Err(err).Int64("id", id).Msg("clientes: respuesta de detalle inesperada")
		return dto.FailErr[*entity.Customer](domain.ErrInvalidResponse.Error(), 0, err)
	}
	return dto.Ok(c)
}

// Create valida y crea el cliente. Con violaciones no hay llamada de red.
func (s *Service) Create(ctx context.Context, in dto.CustomerRequest) dto.Result[*entity.Customer] {
	in = normalize(in)
	if errs := ValidateCustomer(in); len(errs) > 0 {
		return invalid[*entity.Customer](errs)
	}
	raw, err := s.api.Post(ctx, apiclient.PathClientes, in)
	if err != nil {
		return failure[*entity.Customer](err, MsgErrorCrear)
	}
	return dto.Ok(s.echo(raw, in, 0))
}

// Update valida y actualiza el cliente id.
func (s *Service) Update(ctx context.Context, id int64, in dto.CustomerRequest) dto.Result[*entity.Customer] {
	in = normalize(in)
	if errs := ValidateCustomer(in); len(errs) > 0 {
		return invalid[*entity.Customer](errs)
	}
	raw, err := s.api.Put(ctx, itemPath(id), in)
	if err != nil {
		return failure[*entity.Customer](err, MsgErrorActualizar)
	}
	return dto.Ok(s.echo(raw, in, id))
}

// Delete elimina el cliente id.
func (s *Service) Delete(ctx context.Context, id int64) dto.Result[bool] {
	if _, err := s.api.Delete(ctx, itemPath(id)); err != nil {
		return failure[bool](err, MsgErrorEliminar)
	}
	return dto.Ok(true)
}

// echo interpreta el cliente devuelto por create/update; si el backend no lo devuelve
// se usa lo enviado.
func (s *Service) echo(raw json.RawMessage, in dto.CustomerRequest, id int64) *entity.Customer {
	if c, err := decodeCustomer(raw); err == nil {
		return c
	}
	c := in.ToEntity()
	c.ID = id
	return &c
}

func decodeCustomer(raw json.RawMessage) (*entity.Customer, error) {
	body := apiclient.Unwrap(raw)
	if _, ok := apiclient.Lookup(body, "razonsocial", "nombre", "id"); !ok {
		return nil, fmt.Errorf("clientes: cuerpo sin cliente: %w", domain.ErrInvalidResponse)
	}
	var rec dto.CustomerRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("clientes: decodificar cliente: %w", err)
	}
	c := rec.ToEntity()
	return &c, nil
}

// normalize recorta espacios de los campos de texto.
func normalize(in dto.CustomerRequest) dto.CustomerRequest {
	in.CodigoAlte = strings.TrimSpace(in.CodigoAlte)
	in.RazonSocial = strings.TrimSpace(in.RazonSocial)
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Direccion = strings.TrimSpace(in.Direccion)
	in.Telefono = strings.TrimSpace(in.Telefono)
	in.RUT = strings.TrimSpace(in.RUT)
	in.Estado = strings.TrimSpace(in.Estado)
	return in
}

func invalid[T any](errs []string) dto.Result[T] {
	r := dto.FailErr[T](strings.Join(errs, "; "), 0, domain.NewValidationError(errs))
	r.Errors = errs
	return r
}

func failure[T any](err error, def string) dto.Result[T] {
	return dto.FailErr[T](apiclient.ErrorMessage(err, def), domain.StatusOf(err), err)
}
