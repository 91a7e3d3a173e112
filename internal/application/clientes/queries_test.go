package clientes_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panel-clientes/internal/application/clientes"
	"github.com/jhoicas/panel-clientes/internal/application/query"
	"github.com/jhoicas/panel-clientes/internal/domain"
)

func newQueries(api *fakeAPI) *clientes.Queries {
	cache := query.New(query.Options{
		StaleTime:  5 * time.Minute,
		ExpireTime: 10 * time.Minute,
		Retries:    3,
		Sleep:      func(context.Context, time.Duration) error { return nil },
	})
	return clientes.NewQueries(clientes.NewService(api, zerolog.Nop()), cache)
}

func TestQueries_ListCacheada(t *testing.T) {
	api := newFakeAPI()
	api.on("GET /api/clientes", raw(listBody))
	q := newQueries(api)
	ctx := context.Background()

	rows, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Tech Solutions SpA", rows[0].Empresa)
	assert.Equal(t, "No especificado", rows[0].Email)

	_, err = q.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("GET", "/api/clientes"), "dos lecturas dentro de la ventana = una llamada")

	fetching, hasData := q.Status()
	assert.False(t, fetching)
	assert.True(t, hasData)
}

func TestQueries_DeleteInvalidaLaLista(t *testing.T) {
	api := newFakeAPI()
	api.on("GET /api/clientes", raw(listBody))
	api.on("GET /api/clientes/7", raw(`{"id":7,"razonsocial":"Innovate","nombre":"María","direccion":"Calle 2"}`))
	api.on("DELETE /api/clientes/7", raw(`{"success":true}`))
	q := newQueries(api)
	ctx := context.Background()

	_, err := q.List(ctx)
	require.NoError(t, err)
	_, err = q.Get(ctx, 7)
	require.NoError(t, err)

	res := q.Delete(ctx, 7)
	require.True(t, res.Success)

	_, err = q.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.count("GET", "/api/clientes"), "la lista vuelve a pedirse tras el delete")

	_, _ = q.Get(ctx, 7)
	assert.Equal(t, 2, api.count("GET", "/api/clientes/7"), "el detalle se quitó de la caché")
}

func TestQueries_MutacionFallidaNoInvalida(t *testing.T) {
	api := newFakeAPI()
	api.on("GET /api/clientes", raw(listBody))
	api.on("PUT /api/clientes/7", func(any) (json.RawMessage, error) {
		return nil, &domain.HTTPError{Status: 409, Message: "RUT duplicado"}
	})
	q := newQueries(api)
	ctx := context.Background()

	_, _ = q.List(ctx)
	res := q.Update(ctx, 7, validRequest())
	assert.False(t, res.Success)
	assert.Equal(t, "RUT duplicado", res.Error)

	_, _ = q.List(ctx)
	assert.Equal(t, 1, api.count("GET", "/api/clientes"))
}

func TestQueries_CreateYRefetch(t *testing.T) {
	api := newFakeAPI()
	api.on("GET /api/clientes", raw(listBody))
	api.on("POST /api/clientes", raw(`{"id":11,"razonsocial":"Nueva","nombre":"N","direccion":"D"}`))
	q := newQueries(api)
	ctx := context.Background()

	_, _ = q.List(ctx)
	require.True(t, q.Create(ctx, validRequest()).Success)
	_, _ = q.List(ctx)
	assert.Equal(t, 2, api.count("GET", "/api/clientes"))

	q.Refetch()
	_, _ = q.List(ctx)
	assert.Equal(t, 3, api.count("GET", "/api/clientes"))
}

func TestQueries_GetNoEncontradoNoSeReintenta(t *testing.T) {
	api := newFakeAPI()
	q := newQueries(api)

	_, err := q.Get(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, api.count("GET", "/api/clientes/404"))
}

func TestQueries_ListAuthErrorSinReintento(t *testing.T) {
	api := newFakeAPI()
	api.on("GET /api/clientes", func(any) (json.RawMessage, error) {
		return nil, &domain.AuthenticationError{HTTPError: domain.HTTPError{Status: 401}}
	})
	q := newQueries(api)

	_, err := q.List(context.Background())
	assert.True(t, domain.IsAuthError(err))
	assert.Equal(t, 1, api.count("GET", "/api/clientes"))
}

func TestQueries_ListReintentaFallosTransitorios(t *testing.T) {
	api := newFakeAPI()
	attempts := 0
	api.on("GET /api/clientes", func(any) (json.RawMessage, error) {
		attempts++
		if attempts < 3 {
			return nil, &domain.HTTPError{Status: 502}
		}
		return json.RawMessage(listBody), nil
	})
	q := newQueries(api)

	rows, err := q.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 3, attempts)
}
