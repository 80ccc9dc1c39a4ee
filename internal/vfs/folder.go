package vfs

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"filedepot/internal/models"
)

// CreateFolderResult reports whether the slot was freshly created or a
// soft-deleted folder was revived in place.
type CreateFolderResult struct {
	Folder  *models.Folder
	Revived bool
}

// CreateFolder creates name under parentID. A live folder in the slot fails
// with ErrAlreadyExists; a soft-deleted folder occupying the exact slot is
// revived instead, so re-creating a deleted path behaves idempotently.
func (s *Service) CreateFolder(ctx context.Context, userID, parentID uint, name string) (*CreateFolderResult, error) {
	if name == "" {
		return nil, ErrInvalidState
	}
	if _, err := s.folder(ctx, s.db, userID, parentID); err != nil {
		return nil, err
	}

	// Revive path: an exact soft-deleted occupant takes priority.
	var trashed models.Folder
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND parent_id = ? AND name = ? AND is_deleted = ?", userID, parentID, name, true).
		First(&trashed).Error
	if err == nil {
		updates := map[string]any{"is_deleted": false, "deleted_at": nil}
		if err := s.db.WithContext(ctx).Model(&trashed).Updates(updates).Error; err != nil {
			return nil, classify(err)
		}
		trashed.IsDeleted = false
		trashed.DeletedAt = nil
		return &CreateFolderResult{Folder: &trashed, Revived: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	folder := models.Folder{
		Name:     name,
		ParentID: &parentID,
		OwnerID:  userID,
	}
	// The partial unique index is the race-resolution point: a concurrent
	// creator of the same slot loses here with a duplicate-key error.
	if err := s.db.WithContext(ctx).Create(&folder).Error; err != nil {
		return nil, classify(err)
	}
	return &CreateFolderResult{Folder: &folder}, nil
}

// Rename gives a folder a new name within its current parent. A live
// sibling with the same name fails with ErrAlreadyExists.
func (s *Service) RenameFolder(ctx context.Context, userID, folderID uint, name string) (*models.Folder, error) {
	if name == "" {
		return nil, ErrInvalidState
	}
	folder, err := s.folder(ctx, s.db, userID, folderID)
	if err != nil {
		return nil, err
	}
	if folder.ParentID == nil {
		return nil, ErrInvalidState
	}
	if folder.Name == name {
		return folder, nil
	}
	if err := s.db.WithContext(ctx).Model(folder).Update("name", name).Error; err != nil {
		return nil, classify(err)
	}
	folder.Name = name
	return folder, nil
}

// SetFolderLock protects a folder with an access password. The hash is
// stored, never the plaintext.
func (s *Service) SetFolderLock(ctx context.Context, userID, folderID uint, password string) error {
	if password == "" {
		return ErrInvalidState
	}
	folder, err := s.folder(ctx, s.db, userID, folderID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hashStr := string(hash)
	return classify(s.db.WithContext(ctx).Model(folder).Update("access_password_hash", &hashStr).Error)
}

// ClearFolderLock removes the access password.
func (s *Service) ClearFolderLock(ctx context.Context, userID, folderID uint) error {
	folder, err := s.folder(ctx, s.db, userID, folderID)
	if err != nil {
		return err
	}
	return classify(s.db.WithContext(ctx).Model(folder).Update("access_password_hash", nil).Error)
}

// VerifyFolderLock checks a plaintext password against the folder lock.
func (s *Service) VerifyFolderLock(ctx context.Context, userID, folderID uint, password string) (bool, error) {
	folder, err := s.folder(ctx, s.db, userID, folderID)
	if err != nil {
		return false, err
	}
	if !folder.Locked() {
		return true, nil
	}
	err = bcrypt.CompareHashAndPassword([]byte(*folder.AccessPasswordHash), []byte(password))
	return err == nil, nil
}
