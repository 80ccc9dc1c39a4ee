package vfs

import (
	"context"
	"time"

	"github.com/samber/lo"

	"filedepot/internal/models"
)

// FolderEntry is a listing row for a folder. Locked is exposed instead of
// the password itself.
type FolderEntry struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Locked    bool      `json:"locked"`
	Shared    bool      `json:"shared"`
	CreatedAt time.Time `json:"createdAt"`
}

// FileEntry is a listing row for a file.
type FileEntry struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mimeType"`
	Shared    bool      `json:"shared"`
	CreatedAt time.Time `json:"createdAt"`
}

// Listing contains the immediate non-deleted children of one folder.
type Listing struct {
	Folder  *models.Folder `json:"folder"`
	Folders []FolderEntry  `json:"folders"`
	Files   []FileEntry    `json:"files"`
}

func folderEntry(f models.Folder) FolderEntry {
	return FolderEntry{
		ID:        f.ID,
		Name:      f.Name,
		Locked:    f.Locked(),
		Shared:    f.ShareToken != nil,
		CreatedAt: f.CreatedAt,
	}
}

func fileEntry(f models.File) FileEntry {
	return FileEntry{
		ID:        f.ID,
		Name:      f.Name,
		Size:      f.Size,
		MimeType:  f.MimeType,
		Shared:    f.ShareToken != nil,
		CreatedAt: f.CreatedAt,
	}
}

// List returns the non-deleted immediate children of folderID, folders then
// files, each sorted by name.
func (s *Service) List(ctx context.Context, userID, folderID uint) (*Listing, error) {
	folder, err := s.folder(ctx, s.db, userID, folderID)
	if err != nil {
		return nil, err
	}

	var folders []models.Folder
	err = s.db.WithContext(ctx).Scopes(notDeleted).
		Where("owner_id = ? AND parent_id = ?", userID, folderID).
		Order("name").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}

	var files []models.File
	err = s.db.WithContext(ctx).Scopes(notDeleted).
		Where("owner_id = ? AND folder_id = ?", userID, folderID).
		Order("name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}

	return &Listing{
		Folder:  folder,
		Folders: lo.Map(folders, func(f models.Folder, _ int) FolderEntry { return folderEntry(f) }),
		Files:   lo.Map(files, func(f models.File, _ int) FileEntry { return fileEntry(f) }),
	}, nil
}
