package clientes

import (
	"context"
	"errors"

	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/application/query"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
)

// Familias de claves de caché.
const (
	FamilyClientes = "clientes"
	FamilyCliente  = "cliente"
)

// Mensajes por defecto de las consultas.
const (
	MsgErrorCargar      = "Error al cargar clientes"
	MsgClienteNoHallado = "Cliente no encontrado"
)

// KeyClientes clave de la lista completa.
var KeyClientes = query.NewKey(FamilyClientes)

// KeyCliente clave del detalle de un cliente.
func KeyCliente(id int64) query.Key { return query.NewKey(FamilyCliente, id) }

// Queries lecturas cacheadas y mutaciones con invalidación sobre Service.
type Queries struct {
	svc   *Service
	cache *query.Client
}

// NewQueries construye las consultas sobre la caché compartida.
func NewQueries(svc *Service, cache *query.Client) *Queries {
	return &Queries{svc: svc, cache: cache}
}

// List filas de la tabla. Cacheada bajo "clientes".
func (q *Queries) List(ctx context.Context) ([]dto.CustomerRow, error) {
	return query.Read(ctx, q.cache, KeyClientes, func(ctx context.Context) ([]dto.CustomerRow, error) {
		res := q.svc.List(ctx)
		if !res.Success {
			return nil, resultError(res.Err, res.Error, MsgErrorCargar)
		}
		return FormatAllForTable(res.Data), nil
	})
}

// Get fila de un cliente. Cacheada bajo "cliente:<id>".
func (q *Queries) Get(ctx context.Context, id int64) (dto.CustomerRow, error) {
	return query.Read(ctx, q.cache, KeyCliente(id), func(ctx context.Context) (dto.CustomerRow, error) {
		res := q.svc.GetByID(ctx, id)
		if !res.Success || res.Data == nil {
			return dto.CustomerRow{}, resultError(res.Err, res.Error, MsgClienteNoHallado)
		}
		return FormatForTable(*res.Data), nil
	})
}

// Create crea e invalida la lista.
func (q *Queries) Create(ctx context.Context, in dto.CustomerRequest) dto.Result[*entity.Customer] {
	return mutate(ctx, q.cache, func(ctx context.Context) dto.Result[*entity.Customer] {
		return q.svc.Create(ctx, in)
	}, query.Effects{Invalidate: []query.Key{KeyClientes}})
}

// Update actualiza e invalida la lista y el detalle.
func (q *Queries) Update(ctx context.Context, id int64, in dto.CustomerRequest) dto.Result[*entity.Customer] {
	return mutate(ctx, q.cache, func(ctx context.Context) dto.Result[*entity.Customer] {
		return q.svc.Update(ctx, id, in)
	}, query.Effects{Invalidate: []query.Key{KeyClientes, KeyCliente(id)}})
}

// Delete elimina, invalida la lista y quita el detalle de la caché.
func (q *Queries) Delete(ctx context.Context, id int64) dto.Result[bool] {
	return mutate(ctx, q.cache, func(ctx context.Context) dto.Result[bool] {
		return q.svc.Delete(ctx, id)
	}, query.Effects{Invalidate: []query.Key{KeyClientes}, Remove: []query.Key{KeyCliente(id)}})
}

// Refetch fuerza que la próxima lectura de la lista vaya al backend.
func (q *Queries) Refetch() {
	q.cache.Invalidate(KeyClientes)
}

// Status indica si la lista se está pidiendo y si ya hay datos en caché.
func (q *Queries) Status() (isFetching, hasData bool) {
	_, hasData = query.Peek[[]dto.CustomerRow](q.cache, KeyClientes)
	return q.cache.IsFetching(KeyClientes), hasData
}

// mutate adapta un resultado etiquetado a query.Mutate: solo un resultado exitoso invalida.
func mutate[T any](ctx context.Context, c *query.Client, fn func(ctx context.Context) dto.Result[T], fx query.Effects) dto.Result[T] {
	var res dto.Result[T]
	_, _ = query.Mutate(ctx, c, func(ctx context.Context) (T, error) {
		res = fn(ctx)
		if !res.Success {
			return res.Data, errMutationFailed
		}
		return res.Data, nil
	}, fx)
	return res
}

var errMutationFailed = errors.New("clientes: mutación fallida")

func resultError(err error, msg, def string) error {
	if err != nil {
		return err
	}
	if msg == "" {
		msg = def
	}
	return errors.New(msg)
}
