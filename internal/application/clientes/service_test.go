package clientes_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panel-clientes/internal/application/clientes"
	"github.com/jhoicas/panel-clientes/internal/domain"
)

type call struct {
	method string
	path   string
	body   any
}

// fakeAPI backend en memoria con respuestas programables por "METHOD path".
type fakeAPI struct {
	mu        sync.Mutex
	calls     []call
	responses map[string]func(body any) (json.RawMessage, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string]func(any) (json.RawMessage, error){}}
}

func (f *fakeAPI) on(route string, fn func(body any) (json.RawMessage, error)) { f.responses[route] = fn }

func (f *fakeAPI) do(method, path string, body any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{method, path, body})
	f.mu.Unlock()
	if fn, ok := f.responses[method+" "+path]; ok {
		return fn(body)
	}
	return nil, &domain.NotFoundError{HTTPError: domain.HTTPError{Status: 404}}
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) Get(_ context.Context, path string) (json.RawMessage, error) {
	return f.do("GET", path, nil)
}
func (f *fakeAPI) Post(_ context.Context, path string, body any) (json.RawMessage, error) {
	return f.do("POST", path, body)
}
func (f *fakeAPI) Put(_ context.Context, path string, body any) (json.RawMessage, error) {
	return f.do("PUT", path, body)
}
func (f *fakeAPI) Delete(_ context.Context, path string) (json.RawMessage, error) {
	return f.do("DELETE", path, nil)
}

func raw(s string) func(any) (json.RawMessage, error) {
	return func(any) (json.RawMessage, error) { return json.RawMessage(s), nil }
}

const listBody = `{"success":true,"data":[
	{"id":1,"razonsocial":"Tech Solutions SpA","nombre":"Juan","direccion":"Calle 1","rut":"12.345.678-5","estado":"Activo","latitud":"-33.4489000","longitud":"-70.64830000"},
	{"id":7,"razonsocial":"Innovate","nombre":"María","direccion":"Calle 2","estado":"Inactivo","latitud":null,"longitud":null}
]}`

func TestService_List(t *testing.T) {
	api := newFakeAPI()
	api.on("GET /api/clientes", raw(listBody))
	svc := clientes.NewService(api, zerolog.Nop())

	res := svc.List(context.Background())
	require.True(t, res.Success, res.Error)
	require.Len(t, res.Data, 2)
	assert.Equal(t, int64(7), res.Data[1].ID)
	require.NotNil(t, res.Data[0].Latitud)
	assert.Equal(t, "-33.4489", res.Data[0].Latitud.String())
	assert.False(t, res.Data[1].HasLocation())
}

func TestService_List_ArregloDirecto(t *testing.T) {
	api := newFakeAPI()
	api.on("GET /api/clientes", raw(`[{"id":1,"razonsocial":"A","latitud":-33.5,"longitud":-70.1}]`))
	svc := clientes.NewService(api, zerolog.Nop())

	res := svc.List(context.Background())
	require.True(t, res.Success)
	assert.True(t, res.Data[0].HasLocation())
}

func TestService_List_Error(t *testing.T) {
	api := newFakeAPI()
	api.on("GET /api/clientes", func(any) (json.RawMessage, error) {
		return nil, &domain.HTTPError{Status: 500, Message: "Base de datos caída"}
	})
	svc := clientes.NewService(api, zerolog.Nop())

	res := svc.List(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "Base de datos caída", res.Error)
	assert.Equal(t, 500, res.Status)
	assert.Empty(t, res.Data)
}

func TestService_GetByID(t *testing.T) {
	api := newFakeAPI()
	api.on("GET /api/clientes/7", raw(`{"id":7,"razonsocial":"Innovate","nombre":"María","direccion":"Calle 2"}`))
	svc := clientes.NewService(api, zerolog.Nop())

	res := svc.GetByID(context.Background(), 7)
	require.True(t, res.Success)
	assert.Equal(t, "Innovate", res.Data.RazonSocial)

	missing := svc.GetByID(context.Background(), 99)
	assert.False(t, missing.Success)
	assert.Equal(t, 404, missing.Status)
	assert.ErrorIs(t, missing.Err, domain.ErrNotFound)
}

func TestService_Create_FaltanRequeridosSinRed(t *testing.T) {
	api := newFakeAPI()
	svc := clientes.NewService(api, zerolog.Nop())

	in := validRequest()
	in.RazonSocial, in.Nombre, in.Direccion = "", "", ""
	res := svc.Create(context.Background(), in)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Razón social es requerida")
	assert.Contains(t, res.Error, "Nombre es requerido")
	assert.Contains(t, res.Error, "Dirección es requerida")
	assert.Len(t, res.Errors, 3)
	assert.True(t, domain.IsValidationError(res.Err))
	assert.Zero(t, api.total(), "la validación no llega a la red")
}

func TestService_Create(t *testing.T) {
	api := newFakeAPI()
	api.on("POST /api/clientes", func(body any) (json.RawMessage, error) {
		b, _ := json.Marshal(body)
		var m map[string]any
		_ = json.Unmarshal(b, &m)
		assert.Equal(t, "Tech Solutions SpA", m["razonsocial"])
		return json.RawMessage(`{"success":true,"data":{"id":10,"razonsocial":"Tech Solutions SpA","nombre":"Juan Pérez","direccion":"x"}}`), nil
	})
	svc := clientes.NewService(api, zerolog.Nop())

	res := svc.Create(context.Background(), validRequest())
	require.True(t, res.Success, res.Error)
	assert.Equal(t, int64(10), res.Data.ID)
}

func TestService_Update_SinCuerpoUsaLoEnviado(t *testing.T) {
	api := newFakeAPI()
	api.on("PUT /api/clientes/7", raw(`{"success":true,"message":"Actualizado"}`))
	svc := clientes.NewService(api, zerolog.Nop())

	res := svc.Update(context.Background(), 7, validRequest())
	require.True(t, res.Success)
	assert.Equal(t, int64(7), res.Data.ID)
	assert.Equal(t, "Tech Solutions SpA", res.Data.RazonSocial)
}

func TestService_Delete(t *testing.T) {
	api := newFakeAPI()
	api.on("DELETE /api/clientes/7", raw(`null`))
	svc := clientes.NewService(api, zerolog.Nop())

	assert.True(t, svc.Delete(context.Background(), 7).Success)

	failing := newFakeAPI()
	failing.on("DELETE /api/clientes/7", func(any) (json.RawMessage, error) {
		return nil, &domain.NetworkError{Op: "DELETE", Err: errors.New("reset")}
	})
	res := clientes.NewService(failing, zerolog.Nop()).Delete(context.Background(), 7)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrNetwork)
}
