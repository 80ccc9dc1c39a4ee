package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"filedepot/internal/models"
)

// Well-known setting keys.
const (
	SettingActiveBackend = "storage.active_backend"
)

// Settings reads and writes the system key-value table.
type Settings struct {
	db *gorm.DB
}

func NewSettings(db *gorm.DB) *Settings {
	return &Settings{db: db}
}

// Get returns the stored value, or fallback when the key is absent.
func (s *Settings) Get(ctx context.Context, key, fallback string) (string, error) {
	var row models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return row.Value, nil
}

// Set upserts the value for key.
func (s *Settings) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&models.Setting{Key: key, Value: value}).Error
}
