package repository

import (
	"context"
	"errors"
)

// Claves canónicas del almacenamiento durable de la sesión.
const (
	KeyAuthToken = "auth_token"
	KeyUserData  = "user_data"
)

// ErrKeyNotFound la clave no existe en el almacenamiento.
var ErrKeyNotFound = errors.New("clave no encontrada")

// KeyValueStore define el puerto de almacenamiento durable clave-valor (equivalente a localStorage).
// Get devuelve ErrKeyNotFound si la clave no existe.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
	Close(ctx context.Context) error
}
