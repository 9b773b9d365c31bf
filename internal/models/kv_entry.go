package models

import (
	"time"

	"gorm.io/gorm"
)

// KVEntry is one persisted key-value slot when the store is SQL-backed
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// TableName pins the table name independent of naming strategy
func (KVEntry) TableName() string {
	return "kv_entries"
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&KVEntry{})
}
