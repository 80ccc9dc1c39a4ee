package models

import "time"

// User owns an isolated folder tree. Every tree operation is scoped by the
// user ID; there is no cross-user visibility.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsAdmin      bool      `json:"isAdmin" gorm:"default:false"`
	QuotaBytes   int64     `json:"quotaBytes" gorm:"default:0"` // 0 means unlimited
	RootFolderID uint      `json:"rootFolderId"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
