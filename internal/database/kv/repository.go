// Package kv stores key/value blobs in the kv_entries table.
//
// # Usage
//
//	repo := kv.NewRepository(db)
//	err := repo.Set(ctx, "highlights:doc-1", payload)
//	payload, err := repo.Get(ctx, "highlights:doc-1")
package kv

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/deepread/internal/entities"
	store "github.com/mrlokans/deepread/internal/kv"
)

// Repository is a kv.Store backed by gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the value stored under key, or kv.ErrNotFound.
func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	var entry entities.KVEntry
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// Set creates or replaces the value under key.
func (r *Repository) Set(ctx context.Context, key string, value []byte) error {
	entry := entities.KVEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
