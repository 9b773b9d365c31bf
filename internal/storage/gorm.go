package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/valpere/nebo/internal/models"
)

// GormStore keeps slots as rows of the kv_entries table (SQLite on device, PostgreSQL when shared)
type GormStore struct {
	db     *gorm.DB
	prefix string
}

func NewGormStore(db *gorm.DB, prefix string) *GormStore {
	return &GormStore{db: db, prefix: prefix}
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}

	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", s.prefix+key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	entry := models.KVEntry{
		Key:       s.prefix + key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}
