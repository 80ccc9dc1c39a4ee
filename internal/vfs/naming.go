package vfs

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"filedepot/internal/models"
)

// maxNameProbes bounds the "(n)" suffix search.
const maxNameProbes = 1000

// splitExt splits a file name at its last dot. A dot in the first position
// is part of the stem, not an extension marker.
func splitExt(name string) (stem, ext string) {
	lastDot := strings.LastIndex(name, ".")
	if lastDot <= 0 {
		return name, ""
	}
	return name[:lastDot], name[lastDot:]
}

// resolveName returns a name with no non-deleted sibling of the same kind
// under parentID. The desired name is returned unchanged when free;
// otherwise "stem (n)ext" (files) or "name (n)" (folders) is probed for
// n = 1, 2, ... The result can still lose a concurrent insert race, which
// the caller handles via the unique constraint.
func (s *Service) resolveName(ctx context.Context, tx *gorm.DB, userID, parentID uint, desired string, isFile bool) (string, error) {
	stem, ext := desired, ""
	if isFile {
		stem, ext = splitExt(desired)
	}

	candidate := desired
	for n := 0; n <= maxNameProbes; n++ {
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		taken, err := s.nameTaken(ctx, tx, userID, parentID, candidate, isFile)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free name for %q", ErrAlreadyExists, desired)
}

func (s *Service) nameTaken(ctx context.Context, tx *gorm.DB, userID, parentID uint, name string, isFile bool) (bool, error) {
	var count int64
	query := tx.WithContext(ctx).Scopes(notDeleted).Where("owner_id = ? AND name = ?", userID, name)
	if isFile {
		query = query.Model(&models.File{}).Where("folder_id = ?", parentID)
	} else {
		query = query.Model(&models.Folder{}).Where("parent_id = ?", parentID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
