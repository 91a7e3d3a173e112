package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jhoicas/panel-clientes/internal/domain/repository"
)

// KVEntry fila de la tabla panel_kv.
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName nombre fijo de la tabla.
func (KVEntry) TableName() string { return "panel_kv" }

type sqliteStore struct {
	db *gorm.DB
}

// NewSQLite abre (o crea) el archivo SQLite y migra la tabla panel_kv.
func NewSQLite(path string) (repository.KeyValueStore, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: ruta SQLite vacía")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: abrir sqlite: %w", err)
	}
	return NewSQLiteWithDB(db)
}

// NewSQLiteWithDB usa un handle gorm existente (tests con file::memory:).
func NewSQLiteWithDB(db *gorm.DB) (repository.KeyValueStore, error) {
	if db == nil {
		return nil, fmt.Errorf("storage: sqlite requiere handle de base de datos")
	}
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("storage: migrar panel_kv: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *sqliteStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&KVEntry{}).Error
}

func (s *sqliteStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
