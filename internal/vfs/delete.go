package vfs

import (
	"context"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"filedepot/internal/logger"
	"filedepot/internal/models"
)

// Closure is the transitive content of one or more folders, the folders
// themselves included.
type Closure struct {
	FolderIDs []uint
	FileIDs   []uint
}

// collectSubtree computes the full descendant set of folderID regardless of
// deletion flags. It walks an adjacency map built from a single folder
// query, so it terminates on any acyclic tree and never double-counts.
func (s *Service) collectSubtree(ctx context.Context, tx *gorm.DB, userID, folderID uint) (*Closure, error) {
	var folders []models.Folder
	err := tx.WithContext(ctx).
		Select("id", "parent_id").
		Where("owner_id = ?", userID).
		Find(&folders).Error
	if err != nil {
		return nil, err
	}

	children := make(map[uint][]uint, len(folders))
	for _, f := range folders {
		if f.ParentID != nil {
			children[*f.ParentID] = append(children[*f.ParentID], f.ID)
		}
	}

	closure := &Closure{}
	queue := []uint{folderID}
	seen := map[uint]bool{folderID: true}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		closure.FolderIDs = append(closure.FolderIDs, id)
		for _, child := range children[id] {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}

	err = tx.WithContext(ctx).Model(&models.File{}).
		Where("owner_id = ? AND folder_id IN ?", userID, closure.FolderIDs).
		Pluck("id", &closure.FileIDs).Error
	if err != nil {
		return nil, err
	}
	return closure, nil
}

// expand resolves the named items plus the recursive closure of every named
// folder. Folder IDs that do not exist for this user surface as ErrNotFound;
// the root folder is never deletable.
func (s *Service) expand(ctx context.Context, tx *gorm.DB, userID uint, fileIDs, folderIDs []uint) (*Closure, error) {
	closure := &Closure{FileIDs: fileIDs}
	for _, folderID := range folderIDs {
		var folder models.Folder
		err := tx.WithContext(ctx).
			Where("id = ? AND owner_id = ?", folderID, userID).
			First(&folder).Error
		if err != nil {
			return nil, classify(err)
		}
		if folder.ParentID == nil {
			return nil, ErrInvalidState
		}
		sub, err := s.collectSubtree(ctx, tx, userID, folderID)
		if err != nil {
			return nil, err
		}
		closure.FolderIDs = append(closure.FolderIDs, sub.FolderIDs...)
		closure.FileIDs = append(closure.FileIDs, sub.FileIDs...)
	}
	return closure, nil
}

// SoftDelete marks the named files and folders (folders recursively) as
// trashed. Already-deleted items are a no-op, so the operation is
// idempotent. Physical storage is untouched until purge.
func (s *Service) SoftDelete(ctx context.Context, userID uint, fileIDs, folderIDs []uint) error {
	closure, err := s.expand(ctx, s.db, userID, fileIDs, folderIDs)
	if err != nil {
		return err
	}
	now := s.now()
	return s.setDeleted(ctx, userID, closure, true, &now)
}

// Restore clears the trash flag on the named files and folders (folders
// recursively). Symmetric to SoftDelete and equally idempotent.
func (s *Service) Restore(ctx context.Context, userID uint, fileIDs, folderIDs []uint) error {
	closure, err := s.expand(ctx, s.db, userID, fileIDs, folderIDs)
	if err != nil {
		return err
	}
	return s.setDeleted(ctx, userID, closure, false, nil)
}

func (s *Service) setDeleted(ctx context.Context, userID uint, closure *Closure, deleted bool, at *time.Time) error {
	updates := map[string]any{"is_deleted": deleted, "deleted_at": at}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(closure.FileIDs) > 0 {
			err := tx.Model(&models.File{}).
				Where("owner_id = ? AND id IN ? AND is_deleted = ?", userID, closure.FileIDs, !deleted).
				Updates(updates).Error
			if err != nil {
				return err
			}
		}
		if len(closure.FolderIDs) > 0 {
			err := tx.Model(&models.Folder{}).
				Where("owner_id = ? AND id IN ? AND is_deleted = ?", userID, closure.FolderIDs, !deleted).
				Updates(updates).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Purge permanently deletes the named items, folders expanded to their full
// closure. Physical removal runs first, best-effort and grouped by backend;
// metadata rows are deleted regardless of physical failures so no row is
// left referencing an object the driver cannot find.
func (s *Service) Purge(ctx context.Context, userID uint, fileIDs, folderIDs []uint) error {
	closure, err := s.expand(ctx, s.db, userID, fileIDs, folderIDs)
	if err != nil {
		return err
	}
	return s.purgeClosure(ctx, userID, closure)
}

func (s *Service) purgeClosure(ctx context.Context, userID uint, closure *Closure) error {
	// Named folders may be nested inside each other, so their closures can
	// overlap.
	closure.FileIDs = lo.Uniq(closure.FileIDs)
	closure.FolderIDs = lo.Uniq(closure.FolderIDs)

	if len(closure.FileIDs) > 0 {
		var files []models.File
		err := s.db.WithContext(ctx).
			Select("id", "physical_key", "backend").
			Where("owner_id = ? AND id IN ?", userID, closure.FileIDs).
			Find(&files).Error
		if err != nil {
			return err
		}

		keysByBackend := make(map[string][]string)
		for _, f := range files {
			keysByBackend[f.Backend] = append(keysByBackend[f.Backend], f.PhysicalKey)
		}

		// Folders carry no physical object; only file bytes need removal.
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(4)
		for backend, keys := range keysByBackend {
			backend, keys := backend, keys
			group.Go(func() error {
				driver, err := s.registry.Get(backend)
				if err != nil {
					logger.Warn("purge: %v, leaving %d objects behind", err, len(keys))
					return nil
				}
				driver.Remove(groupCtx, keys)
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(closure.FileIDs) > 0 {
			err := tx.Where("owner_id = ? AND id IN ?", userID, closure.FileIDs).
				Delete(&models.File{}).Error
			if err != nil {
				return err
			}
		}
		if len(closure.FolderIDs) > 0 {
			err := tx.Where("owner_id = ? AND id IN ?", userID, closure.FolderIDs).
				Delete(&models.Folder{}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// EmptyTrash permanently deletes every currently trashed item of the user.
func (s *Service) EmptyTrash(ctx context.Context, userID uint) error {
	var fileIDs, folderIDs []uint
	err := s.db.WithContext(ctx).Model(&models.File{}).
		Where("owner_id = ? AND is_deleted = ?", userID, true).
		Pluck("id", &fileIDs).Error
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(&models.Folder{}).
		Where("owner_id = ? AND is_deleted = ?", userID, true).
		Pluck("id", &folderIDs).Error
	if err != nil {
		return err
	}
	if len(fileIDs) == 0 && len(folderIDs) == 0 {
		return nil
	}
	return s.Purge(ctx, userID, fileIDs, folderIDs)
}

// TrashContents lists the user's trashed items, most recently deleted first.
func (s *Service) TrashContents(ctx context.Context, userID uint) (*SearchResult, error) {
	var folders []models.Folder
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND is_deleted = ?", userID, true).
		Order("deleted_at DESC").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}
	var files []models.File
	err = s.db.WithContext(ctx).
		Where("owner_id = ? AND is_deleted = ?", userID, true).
		Order("deleted_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}

	result := &SearchResult{}
	for _, f := range folders {
		result.Folders = append(result.Folders, folderEntry(f))
	}
	for _, f := range files {
		result.Files = append(result.Files, fileEntry(f))
	}
	return result, nil
}
