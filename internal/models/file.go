package models

import "time"

// File is a logical file row. PhysicalKey addresses the bytes inside the
// storage backend recorded in Backend, so files uploaded before a backend
// switch stay downloadable. The slot index (name, folder_id, owner_id) is
// unique among rows that are not soft-deleted.
type File struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;uniqueIndex:uniq_file_slot,where:is_deleted = false"`
	FolderID uint   `json:"folderId" gorm:"not null;index;uniqueIndex:uniq_file_slot,where:is_deleted = false"`
	OwnerID  uint   `json:"-" gorm:"not null;index;uniqueIndex:uniq_file_slot,where:is_deleted = false"`

	PhysicalKey string `json:"-" gorm:"not null"`
	Backend     string `json:"-" gorm:"not null"` // driver tag that produced PhysicalKey
	MimeType    string `json:"mimeType"`
	Size        int64  `json:"size" gorm:"not null"`

	ShareToken        *string    `json:"-" gorm:"uniqueIndex"`
	ShareExpiresAt    *time.Time `json:"-"`
	SharePasswordHash *string    `json:"-"`

	IsDeleted bool       `json:"-" gorm:"default:false;index"`
	DeletedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
