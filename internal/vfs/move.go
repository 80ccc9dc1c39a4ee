package vfs

import (
	"context"

	"filedepot/internal/models"
)

// ConflictPolicy selects what happens when a moved file's name is already
// taken at the destination.
type ConflictPolicy string

const (
	// ConflictRename resolves the collision by probing "name (n)".
	ConflictRename ConflictPolicy = "rename"
	// ConflictOverwrite trashes the occupant, then moves.
	ConflictOverwrite ConflictPolicy = "overwrite"
	// ConflictSkip leaves the moving file where it is.
	ConflictSkip ConflictPolicy = "skip"
)

// MoveResult reports per-item outcomes of a bulk move.
type MoveResult struct {
	MovedFiles     []uint `json:"movedFiles"`
	MovedFolders   []uint `json:"movedFolders"`
	SkippedFiles   []uint `json:"skippedFiles"`
	SkippedFolders []uint `json:"skippedFolders"`
}

// Move relocates files and folders under one user into destID. Files follow
// the conflict policy; folder collisions are always resolved by rename.
// Moving a folder into itself is silently skipped; moving it into one of its
// own descendants fails with ErrInvalidState, since that would create a
// cycle. Ownership and physical storage are never touched: only the parent
// pointers change.
func (s *Service) Move(ctx context.Context, userID uint, fileIDs, folderIDs []uint, destID uint, policy ConflictPolicy) (*MoveResult, error) {
	switch policy {
	case "":
		policy = ConflictRename
	case ConflictRename, ConflictOverwrite, ConflictSkip:
	default:
		return nil, ErrInvalidState
	}
	if _, err := s.folder(ctx, s.db, userID, destID); err != nil {
		return nil, err
	}

	result := &MoveResult{}
	for _, folderID := range folderIDs {
		if folderID == destID {
			result.SkippedFolders = append(result.SkippedFolders, folderID)
			continue
		}
		moved, err := s.moveFolder(ctx, userID, folderID, destID)
		if err != nil {
			return nil, err
		}
		if moved {
			result.MovedFolders = append(result.MovedFolders, folderID)
		} else {
			result.SkippedFolders = append(result.SkippedFolders, folderID)
		}
	}
	for _, fileID := range fileIDs {
		moved, err := s.moveFile(ctx, userID, fileID, destID, policy)
		if err != nil {
			return nil, err
		}
		if moved {
			result.MovedFiles = append(result.MovedFiles, fileID)
		} else {
			result.SkippedFiles = append(result.SkippedFiles, fileID)
		}
	}
	return result, nil
}

func (s *Service) moveFolder(ctx context.Context, userID, folderID, destID uint) (bool, error) {
	folder, err := s.folder(ctx, s.db, userID, folderID)
	if err != nil {
		return false, err
	}
	if folder.ParentID == nil {
		return false, ErrInvalidState
	}
	if *folder.ParentID == destID {
		return false, nil
	}

	// Reject a destination inside the moving folder's own subtree.
	closure, err := s.collectSubtree(ctx, s.db, userID, folderID)
	if err != nil {
		return false, err
	}
	for _, id := range closure.FolderIDs {
		if id == destID {
			return false, ErrInvalidState
		}
	}

	name, err := s.resolveName(ctx, s.db, userID, destID, folder.Name, false)
	if err != nil {
		return false, err
	}
	updates := map[string]any{"parent_id": destID, "name": name}
	if err := s.db.WithContext(ctx).Model(folder).Updates(updates).Error; err != nil {
		return false, classify(err)
	}
	return true, nil
}

func (s *Service) moveFile(ctx context.Context, userID, fileID, destID uint, policy ConflictPolicy) (bool, error) {
	file, err := s.file(ctx, s.db, userID, fileID)
	if err != nil {
		return false, err
	}
	if file.FolderID == destID {
		return false, nil
	}

	name := file.Name
	taken, err := s.nameTaken(ctx, s.db, userID, destID, name, true)
	if err != nil {
		return false, err
	}
	if taken {
		switch policy {
		case ConflictSkip:
			return false, nil
		case ConflictOverwrite:
			var occupant models.File
			err := s.db.WithContext(ctx).Scopes(notDeleted).
				Where("owner_id = ? AND folder_id = ? AND name = ?", userID, destID, name).
				First(&occupant).Error
			if err != nil {
				return false, classify(err)
			}
			if err := s.SoftDelete(ctx, userID, []uint{occupant.ID}, nil); err != nil {
				return false, err
			}
		default:
			name, err = s.resolveName(ctx, s.db, userID, destID, name, true)
			if err != nil {
				return false, err
			}
		}
	}

	updates := map[string]any{"folder_id": destID, "name": name}
	if err := s.db.WithContext(ctx).Model(file).Updates(updates).Error; err != nil {
		return false, classify(err)
	}
	return true, nil
}
