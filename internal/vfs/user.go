package vfs

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"filedepot/internal/models"
)

// rootFolderName is the display name of each user's tree root.
const rootFolderName = "/"

// CreateUser creates a user together with their root folder in one
// transaction. quotaBytes of 0 means unlimited.
func (s *Service) CreateUser(ctx context.Context, username, password string, quotaBytes int64, isAdmin bool) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidState
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		QuotaBytes:   quotaBytes,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return classify(err)
		}
		root := models.Folder{Name: rootFolderName, OwnerID: user.ID}
		if err := tx.Create(&root).Error; err != nil {
			return classify(err)
		}
		user.RootFolderID = root.ID
		return tx.Model(&user).Update("root_folder_id", root.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user and everything they own. Admin-level only.
// Physical objects are removed best-effort; the rows go unconditionally
// (referential cascade).
func (s *Service) DeleteUser(ctx context.Context, actorID, userID uint) error {
	var actor models.User
	if err := s.db.WithContext(ctx).First(&actor, actorID).Error; err != nil {
		return classify(err)
	}
	if !actor.IsAdmin {
		return ErrInvalidState
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return classify(err)
	}

	var fileIDs []uint
	err := s.db.WithContext(ctx).Model(&models.File{}).
		Where("owner_id = ?", userID).
		Pluck("id", &fileIDs).Error
	if err != nil {
		return err
	}
	var folderIDs []uint
	err = s.db.WithContext(ctx).Model(&models.Folder{}).
		Where("owner_id = ?", userID).
		Pluck("id", &folderIDs).Error
	if err != nil {
		return err
	}
	if err := s.purgeClosure(ctx, userID, &Closure{FileIDs: fileIDs, FolderIDs: folderIDs}); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}
