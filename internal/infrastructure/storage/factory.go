// Package storage implementa el almacenamiento durable clave-valor de la sesión
// (token + usuario serializado), equivalente al localStorage del navegador.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/panel-clientes/internal/domain/repository"
	"github.com/jhoicas/panel-clientes/pkg/config"
)

// Drivers soportados.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// New crea el almacenamiento según la configuración. Driver vacío = memory.
func New(ctx context.Context, cfg config.StorageConfig) (repository.KeyValueStore, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(cfg.SQLitePath)
	case DriverRedis:
		return NewRedis(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case DriverPostgres:
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("storage: driver no soportado: %s", cfg.Driver)
	}
}
