package models

import "time"

// Folder is a node of a user's tree. ParentID is nil only for the per-user
// root folder. The slot index (name, parent_id, owner_id) is unique among
// rows that are not soft-deleted, so a deleted folder never blocks re-use of
// its name.
type Folder struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;uniqueIndex:uniq_folder_slot,where:is_deleted = false"`
	ParentID *uint  `json:"parentId" gorm:"index;uniqueIndex:uniq_folder_slot,where:is_deleted = false"`
	OwnerID  uint   `json:"-" gorm:"not null;index;uniqueIndex:uniq_folder_slot,where:is_deleted = false"`

	// Share triple; at most one active share per folder.
	ShareToken        *string    `json:"-" gorm:"uniqueIndex"`
	ShareExpiresAt    *time.Time `json:"-"`
	SharePasswordHash *string    `json:"-"`

	// Folder lock. A set hash hides the folder and its subtree from search.
	AccessPasswordHash *string `json:"-"`

	IsDeleted bool       `json:"-" gorm:"default:false;index"`
	DeletedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Locked reports whether the folder carries an access password.
func (f *Folder) Locked() bool {
	return f.AccessPasswordHash != nil && *f.AccessPasswordHash != ""
}
