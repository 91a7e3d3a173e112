package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/panel-clientes/internal/domain/repository"
)

// RedisConfig conexión al Redis que guarda la sesión.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis construye el almacenamiento sobre Redis. Las claves no expiran:
// la expiración de la sesión la decide el claim exp del token.
func NewRedis(ctx context.Context, cfg RedisConfig) (repository.KeyValueStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("storage: dirección de redis requerida")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: ping redis: %w", err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "panel:"
	}
	return &redisStore{client: client, prefix: prefix}, nil
}

func (s *redisStore) key(k string) string { return s.prefix + k }

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrKeyNotFound
	}
	return v, err
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *redisStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.client.Del(ctx, full...).Err()
}

func (s *redisStore) Close(context.Context) error {
	return s.client.Close()
}
