package models

import "time"

// Setting is a system-wide key-value row, used for the active storage
// backend selection and other whole-process configuration. It is not part of
// the per-tenant data model.
type Setting struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"uniqueIndex;not null;column:key"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
