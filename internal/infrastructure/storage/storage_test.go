package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panel-clientes/internal/domain/repository"
	"github.com/jhoicas/panel-clientes/internal/infrastructure/storage"
	"github.com/jhoicas/panel-clientes/pkg/config"
)

// exerciseStore contrato común de todos los drivers.
func exerciseStore(t *testing.T, store repository.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, repository.KeyAuthToken)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, repository.KeyAuthToken, "tok-1"))
	require.NoError(t, store.Set(ctx, repository.KeyUserData, `{"id":"1","username":"ana"}`))

	v, err := store.Get(ctx, repository.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", v)

	// sobrescritura
	require.NoError(t, store.Set(ctx, repository.KeyAuthToken, "tok-2"))
	v, err = store.Get(ctx, repository.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", v)

	require.NoError(t, store.Remove(ctx, repository.KeyAuthToken, repository.KeyUserData))
	_, err = store.Get(ctx, repository.KeyAuthToken)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	_, err = store.Get(ctx, repository.KeyUserData)
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	// borrar claves inexistentes no falla
	require.NoError(t, store.Remove(ctx, repository.KeyAuthToken))
	require.NoError(t, store.Remove(ctx))
}

func TestMemoryStore(t *testing.T) {
	store := storage.NewMemory()
	exerciseStore(t, store)
	require.NoError(t, store.Close(context.Background()))
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.db")
	store, err := storage.NewSQLite(path)
	require.NoError(t, err)
	defer store.Close(context.Background())
	exerciseStore(t, store)
}

func TestSQLiteStore_PersisteEntreAperturas(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "panel.db")

	store, err := storage.NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, repository.KeyAuthToken, "persistente"))
	require.NoError(t, store.Close(ctx))

	reopened, err := storage.NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close(ctx)
	v, err := reopened.Get(ctx, repository.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "persistente", v)
}

func TestSQLiteStore_RutaVacia(t *testing.T) {
	_, err := storage.NewSQLite("")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := storage.NewRedis(context.Background(), storage.RedisConfig{Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	defer store.Close(context.Background())

	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), repository.KeyUserData, "x"))
	assert.True(t, mr.Exists("test:"+repository.KeyUserData), "las claves llevan el prefijo configurado")
}

func TestRedisStore_SinServidor(t *testing.T) {
	_, err := storage.NewRedis(context.Background(), storage.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestPostgresStore_Integracion(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	store, err := storage.NewPostgres(context.Background(), dsn)
	require.NoError(t, err)
	defer store.Close(context.Background())
	exerciseStore(t, store)
}

func TestNew_SeleccionDeDriver(t *testing.T) {
	ctx := context.Background()

	store, err := storage.New(ctx, config.StorageConfig{Driver: storage.DriverMemory})
	require.NoError(t, err)
	exerciseStore(t, store)

	store, err = storage.New(ctx, config.StorageConfig{Driver: storage.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "f.db")})
	require.NoError(t, err)
	defer store.Close(ctx)

	mr := miniredis.RunT(t)
	rstore, err := storage.New(ctx, config.StorageConfig{Driver: storage.DriverRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer rstore.Close(ctx)

	_, err = storage.New(ctx, config.StorageConfig{Driver: "cassandra"})
	assert.Error(t, err)
}
