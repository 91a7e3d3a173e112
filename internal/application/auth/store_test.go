package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panel-clientes/internal/application/auth"
	"github.com/jhoicas/panel-clientes/internal/application/dto"
	"github.com/jhoicas/panel-clientes/internal/domain"
	"github.com/jhoicas/panel-clientes/internal/domain/entity"
	"github.com/jhoicas/panel-clientes/internal/domain/repository"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/apiclient"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/storage"
	pkgjwt "github.com/jhoicas/panel-clientes/pkg/jwt"
)

// fakeAPI responde según la ruta y registra las llamadas.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]func(body any) (json.RawMessage, error)
	calls     []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string]func(any) (json.RawMessage, error){}}
}

func (f *fakeAPI) on(path string, fn func(body any) (json.RawMessage, error)) {
	f.responses[path] = fn
}

func (f *fakeAPI) Post(_ context.Context, path string, body any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()
	fn, ok := f.responses[path]
	if !ok {
		return nil, &domain.NotFoundError{HTTPError: domain.HTTPError{Status: 404}}
	}
	return fn(body)
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func jsonResp(s string) func(any) (json.RawMessage, error) {
	return func(any) (json.RawMessage, error) { return json.RawMessage(s), nil }
}

func newStore(t *testing.T, api auth.Poster) (*auth.Store, repository.KeyValueStore) {
	t.Helper()
	kv := storage.NewMemory()
	return auth.NewStore(api, kv, auth.Options{Logger: zerolog.Nop()}), kv
}

func validToken(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate("secret", "1", "ana", "test", 60)
	require.NoError(t, err)
	return tok
}

func TestLogin_Exitoso_PersisteSesion(t *testing.T) {
	api := newFakeAPI()
	api.on(apiclient.PathLogin, func(body any) (json.RawMessage, error) {
		req := body.(dto.LoginRequest)
		assert.Equal(t, "ana", req.Username)
		assert.Equal(t, "secreto", req.Password)
		return json.RawMessage(`{"success":true,"data":{"token":"tok-ana","usuario":{"id":1,"username":"ana","nombre_completo":"Ana Pérez"}}}`), nil
	})
	store, kv := newStore(t, api)
	ctx := context.Background()

	res := store.Login(ctx, "ana", "secreto")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, auth.MsgLoginExitoso, res.Message)
	assert.Equal(t, "tok-ana", res.Token)

	snap := store.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "ana", snap.Username)
	assert.Equal(t, "1", snap.UserID)
	assert.Equal(t, "Ana Pérez", snap.DisplayName)
	assert.Equal(t, "tok-ana", store.Token())
	assert.Equal(t, entity.SessionAuthenticated, store.State())

	tok, err := kv.Get(ctx, repository.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-ana", tok)
	userData, err := kv.Get(ctx, repository.KeyUserData)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","username":"ana","nombre_completo":"Ana Pérez"}`, userData)
}

func TestLogin_FormatosAlternativosDeRespuesta(t *testing.T) {
	bodies := []string{
		`{"token":"t","usuario":{"id":"2","username":"ana"}}`,
		`{"token":"t","user":{"id":"2","username":"ana"}}`,
		`{"data":{"token":"t"},"user":{"id":"2"}}`,
	}
	for _, b := range bodies {
		api := newFakeAPI()
		api.on(apiclient.PathLogin, jsonResp(b))
		store, _ := newStore(t, api)
		res := store.Login(context.Background(), "ana", "x")
		require.True(t, res.Success, b)
		assert.Equal(t, "ana", store.Snapshot().Username, "el username coincide con el enviado")
	}
}

func TestLogin_CredencialesIncorrectas_NoTocaAlmacenamiento(t *testing.T) {
	api := newFakeAPI()
	api.on(apiclient.PathLogin, func(any) (json.RawMessage, error) {
		return nil, &domain.AuthenticationError{HTTPError: domain.HTTPError{Status: 401, Message: "Credenciales inválidas"}}
	})
	store, kv := newStore(t, api)
	ctx := context.Background()

	res := store.Login(ctx, "ana", "mala")
	assert.False(t, res.Success)
	assert.Equal(t, auth.MsgCredenciales, res.Error)
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, entity.SessionUnauthenticated, store.State())

	_, err := kv.Get(ctx, repository.KeyAuthToken)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	_, err = kv.Get(ctx, repository.KeyUserData)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestLogin_CamposVaciosNoLlamanAlBackend(t *testing.T) {
	api := newFakeAPI()
	store, _ := newStore(t, api)

	assert.Equal(t, auth.MsgUsuarioVacio, store.Login(context.Background(), "  ", "x").Error)
	assert.Equal(t, auth.MsgPasswordVacia, store.Login(context.Background(), "ana", "").Error)
	assert.Zero(t, api.callCount())
}

func TestLogin_Fallos(t *testing.T) {
	cases := []struct {
		name string
		resp func(any) (json.RawMessage, error)
		want string
	}{
		{"success false con error", jsonResp(`{"success":false,"error":"Usuario bloqueado"}`), "Usuario bloqueado"},
		{"success false sin error", jsonResp(`{"success":false}`), auth.MsgErrorLogin},
		{"sin token", jsonResp(`{"usuario":{"id":1}}`), auth.MsgRespuestaInvalida},
		{"usuario no objeto", jsonResp(`{"token":"t","usuario":"ana"}`), auth.MsgRespuestaInvalida},
		{"error de red", func(any) (json.RawMessage, error) {
			return nil, &domain.NetworkError{Op: "POST", Err: errors.New("connection refused")}
		}, "POST: connection refused"},
		{"error 500", func(any) (json.RawMessage, error) {
			return nil, &domain.HTTPError{Status: 500}
		}, "HTTP Error: 500 Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := newFakeAPI()
			api.on(apiclient.PathLogin, tc.resp)
			store, _ := newStore(t, api)
			res := store.Login(context.Background(), "ana", "x")
			assert.False(t, res.Success)
			assert.Equal(t, tc.want, res.Error)
			assert.False(t, store.IsAuthenticated())
		})
	}
}

func TestRegister_ValidacionLocal(t *testing.T) {
	valid := dto.RegisterRequest{
		NombreCompleto:  "Ana Pérez",
		Username:        "ana",
		Email:           "ana@ejemplo.cl",
		Password:        "secreto",
		ConfirmPassword: "secreto",
	}
	cases := []struct {
		name   string
		mutate func(r *dto.RegisterRequest)
		want   string
	}{
		{"nombre vacío", func(r *dto.RegisterRequest) { r.NombreCompleto = "   " }, auth.MsgNombreRequerido},
		{"usuario vacío", func(r *dto.RegisterRequest) { r.Username = "" }, auth.MsgUsuarioRequerido},
		{"usuario corto", func(r *dto.RegisterRequest) { r.Username = "an" }, auth.MsgUsuarioCorto},
		{"email vacío", func(r *dto.RegisterRequest) { r.Email = "" }, auth.MsgEmailRequerido},
		{"email inválido", func(r *dto.RegisterRequest) { r.Email = "ana@ejemplo" }, auth.MsgEmailInvalido},
		{"password vacía", func(r *dto.RegisterRequest) { r.Password = "  "; r.ConfirmPassword = "  " }, auth.MsgPasswordRequerida},
		{"password corta", func(r *dto.RegisterRequest) { r.Password = "12345"; r.ConfirmPassword = "12345" }, auth.MsgPasswordCorta},
		{"no coinciden", func(r *dto.RegisterRequest) { r.ConfirmPassword = "otra-cosa" }, auth.MsgPasswordsDistinta},
		{"primer error gana", func(r *dto.RegisterRequest) { r.NombreCompleto = ""; r.Email = "x" }, auth.MsgNombreRequerido},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := newFakeAPI()
			store, _ := newStore(t, api)
			in := valid
			tc.mutate(&in)
			res := store.Register(context.Background(), in)
			assert.False(t, res.Success)
			assert.Equal(t, tc.want, res.Error)
			assert.Zero(t, api.callCount(), "la validación no llega a la red")
		})
	}
}

func TestRegister_Exitoso(t *testing.T) {
	api := newFakeAPI()
	api.on(apiclient.PathRegister, func(body any) (json.RawMessage, error) {
		p := body.(dto.RegisterPayload)
		assert.Equal(t, "ana", p.Username, "los campos se envían recortados")
		assert.Equal(t, "Ana Pérez", p.NombreCompleto)
		return json.RawMessage(`{"success":true,"message":"Usuario creado","data":{"token":"t","usuario":{"id":9,"username":"ana"}}}`), nil
	})
	store, kv := newStore(t, api)

	res := store.Register(context.Background(), dto.RegisterRequest{
		NombreCompleto: " Ana Pérez ", Username: " ana ", Email: "ana@ejemplo.cl",
		Password: "secreto", ConfirmPassword: "secreto",
	})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Usuario creado", res.Message)
	assert.Equal(t, "Ana Pérez", store.Snapshot().DisplayName)
	_, err := kv.Get(context.Background(), repository.KeyAuthToken)
	assert.NoError(t, err)
}

func TestRegister_RespuestaSinToken(t *testing.T) {
	api := newFakeAPI()
	api.on(apiclient.PathRegister, jsonResp(`{"token":"t","usuario":{"id":1}}`))
	store, _ := newStore(t, api)

	res := store.Register(context.Background(), dto.RegisterRequest{
		NombreCompleto: "Ana", Username: "ana", Email: "ana@ejemplo.cl",
		Password: "secreto", ConfirmPassword: "secreto",
	})
	assert.False(t, res.Success)
	assert.Equal(t, auth.MsgDatosRegistroInvalid, res.Error)
}

func TestLogout_IdempotenteYLimpiaAlmacenamiento(t *testing.T) {
	api := newFakeAPI()
	api.on(apiclient.PathLogin, jsonResp(`{"token":"t","user":{"id":"1","username":"ana"}}`))
	store, kv := newStore(t, api)
	ctx := context.Background()
	require.True(t, store.Login(ctx, "ana", "x").Success)

	var notified int
	store.OnLogout(func() { notified++ })

	store.Logout(ctx)
	store.Logout(ctx)
	assert.Equal(t, 2, notified)
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Token())

	// rehidratación posterior: sigue sin sesión y sin claves
	fresh := auth.NewStore(api, kv, auth.Options{Logger: zerolog.Nop()})
	require.NoError(t, fresh.Rehydrate(ctx))
	assert.False(t, fresh.Snapshot().IsAuthenticated)
	_, err := kv.Get(ctx, repository.KeyAuthToken)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	_, err = kv.Get(ctx, repository.KeyUserData)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestRehydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("par completo sin red", func(t *testing.T) {
		api := newFakeAPI()
		store, kv := newStore(t, api)
		assert.Equal(t, entity.SessionResolving, store.State())
		tok := validToken(t)
		require.NoError(t, kv.Set(ctx, repository.KeyAuthToken, tok))
		require.NoError(t, kv.Set(ctx, repository.KeyUserData, `{"id":"1","username":"ana"}`))

		require.NoError(t, store.Rehydrate(ctx))
		assert.True(t, store.IsAuthenticated())
		assert.Equal(t, tok, store.Token())
		assert.Zero(t, api.callCount())
	})

	t.Run("token sin usuario se purga", func(t *testing.T) {
		store, kv := newStore(t, newFakeAPI())
		require.NoError(t, kv.Set(ctx, repository.KeyAuthToken, "t"))

		require.NoError(t, store.Rehydrate(ctx))
		assert.False(t, store.IsAuthenticated())
		assert.Equal(t, entity.SessionUnauthenticated, store.State())
		_, err := kv.Get(ctx, repository.KeyAuthToken)
		assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	})

	t.Run("usuario corrupto se purga", func(t *testing.T) {
		store, kv := newStore(t, newFakeAPI())
		require.NoError(t, kv.Set(ctx, repository.KeyAuthToken, "t"))
		require.NoError(t, kv.Set(ctx, repository.KeyUserData, `{no-json`))

		require.NoError(t, store.Rehydrate(ctx))
		assert.False(t, store.IsAuthenticated())
		_, err := kv.Get(ctx, repository.KeyUserData)
		assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	})

	t.Run("token vencido se purga", func(t *testing.T) {
		store, kv := newStore(t, newFakeAPI())
		expired, err := pkgjwt.Generate("secret", "1", "ana", "test", -5)
		require.NoError(t, err)
		require.NoError(t, kv.Set(ctx, repository.KeyAuthToken, expired))
		require.NoError(t, kv.Set(ctx, repository.KeyUserData, `{"id":"1","username":"ana"}`))

		require.NoError(t, store.Rehydrate(ctx))
		assert.False(t, store.IsAuthenticated())
	})

	t.Run("token vencido con id numérico se purga", func(t *testing.T) {
		store, kv := newStore(t, newFakeAPI())
		expired, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
			"id": 5, "username": "ana", "exp": time.Now().Add(-time.Hour).Unix(),
		}).SignedString([]byte("secreto-del-backend"))
		require.NoError(t, err)
		require.NoError(t, kv.Set(ctx, repository.KeyAuthToken, expired))
		require.NoError(t, kv.Set(ctx, repository.KeyUserData, `{"id":5,"username":"ana"}`))

		require.NoError(t, store.Rehydrate(ctx))
		assert.False(t, store.IsAuthenticated())
		_, err = kv.Get(ctx, repository.KeyAuthToken)
		assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("deshabilitado", func(t *testing.T) {
		api := newFakeAPI()
		store, _ := newStore(t, api)
		_, err := store.RefreshToken(ctx)
		assert.ErrorIs(t, err, domain.ErrFeatureDisabled)
		assert.Zero(t, api.callCount())
	})

	t.Run("habilitado", func(t *testing.T) {
		api := newFakeAPI()
		api.on(apiclient.PathLogin, jsonResp(`{"token":"viejo","user":{"id":"1","username":"ana"}}`))
		api.on(apiclient.PathRefresh, jsonResp(`{"token":"nuevo"}`))
		kv := storage.NewMemory()
		store := auth.NewStore(api, kv, auth.Options{TokenRefresh: true, Logger: zerolog.Nop()})
		require.True(t, store.Login(ctx, "ana", "x").Success)

		tok, err := store.RefreshToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "nuevo", tok)
		assert.Equal(t, "nuevo", store.Token())
		stored, _ := kv.Get(ctx, repository.KeyAuthToken)
		assert.Equal(t, "nuevo", stored)
	})

	t.Run("fallo cierra sesión", func(t *testing.T) {
		api := newFakeAPI()
		api.on(apiclient.PathLogin, jsonResp(`{"token":"viejo","user":{"id":"1","username":"ana"}}`))
		store := auth.NewStore(api, storage.NewMemory(), auth.Options{TokenRefresh: true, Logger: zerolog.Nop()})
		require.True(t, store.Login(ctx, "ana", "x").Success)

		_, err := store.RefreshToken(ctx)
		assert.Error(t, err)
		assert.False(t, store.IsAuthenticated())
	})
}

func TestCheckExpiry(t *testing.T) {
	ctx := context.Background()
	tok := validToken(t)
	api := newFakeAPI()
	api.on(apiclient.PathLogin, jsonResp(`{"token":"`+tok+`","user":{"id":"1","username":"ana"}}`))

	now := time.Now()
	clock := func() time.Time { return now }
	store := auth.NewStore(api, storage.NewMemory(), auth.Options{Logger: zerolog.Nop(), Now: clock})
	require.True(t, store.Login(ctx, "ana", "x").Success)

	assert.False(t, store.CheckExpiry(ctx))
	assert.True(t, store.IsAuthenticated())

	now = now.Add(2 * time.Hour)
	assert.True(t, store.CheckExpiry(ctx))
	assert.False(t, store.IsAuthenticated())
}
