package vfs

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"filedepot/internal/models"
)

// escapeLike neutralizes LIKE metacharacters so a fragment such as "100%"
// matches literally instead of as a wildcard.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// pathFlags aggregates ancestor state down from the root: locked is
// inclusive of the folder itself, deleted covers the whole ancestor chain.
type pathFlags struct {
	locked  bool
	deleted bool
}

// folderPathFlags loads every folder of the user once and propagates
// (locked, deleted) along parent links iteratively, avoiding a per-candidate
// tree walk.
func (s *Service) folderPathFlags(ctx context.Context, tx *gorm.DB, userID uint) (map[uint]pathFlags, error) {
	var folders []models.Folder
	err := tx.WithContext(ctx).
		Select("id", "parent_id", "access_password_hash", "is_deleted").
		Where("owner_id = ?", userID).
		Find(&folders).Error
	if err != nil {
		return nil, err
	}

	children := make(map[uint][]*models.Folder, len(folders))
	flags := make(map[uint]pathFlags, len(folders))
	var roots []*models.Folder
	for i := range folders {
		f := &folders[i]
		if f.ParentID == nil {
			roots = append(roots, f)
		} else {
			children[*f.ParentID] = append(children[*f.ParentID], f)
		}
	}

	// BFS from the roots; parent flags are final before children are seen.
	// Orphan back-edges cannot occur: move rejects descendant destinations.
	queue := roots
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		inherited := pathFlags{}
		if f.ParentID != nil {
			inherited = flags[*f.ParentID]
		}
		flags[f.ID] = pathFlags{
			locked:  inherited.locked || f.Locked(),
			deleted: inherited.deleted || f.IsDeleted,
		}
		queue = append(queue, children[f.ID]...)
	}
	return flags, nil
}

// SearchResult holds all matches visible to the user.
type SearchResult struct {
	Folders []FolderEntry `json:"folders"`
	Files   []FileEntry   `json:"files"`
}

// Search returns non-deleted items at any depth whose name contains
// fragment, excluding anything below a deleted or password-locked ancestor.
// The lock check includes the matching folder itself.
func (s *Service) Search(ctx context.Context, userID uint, fragment string) (*SearchResult, error) {
	if fragment == "" {
		return &SearchResult{}, nil
	}
	flags, err := s.folderPathFlags(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	pattern := "%" + escapeLike(fragment) + "%"

	var folders []models.Folder
	err = s.db.WithContext(ctx).Scopes(notDeleted).
		Where("owner_id = ? AND name LIKE ? ESCAPE '\\'", userID, pattern).
		Order("name").
		Find(&folders).Error
	if err != nil {
		return nil, err
	}

	var files []models.File
	err = s.db.WithContext(ctx).Scopes(notDeleted).
		Where("owner_id = ? AND name LIKE ? ESCAPE '\\'", userID, pattern).
		Order("name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}

	result := &SearchResult{}
	for _, f := range folders {
		pf := flags[f.ID]
		if pf.locked || pf.deleted {
			continue
		}
		result.Folders = append(result.Folders, folderEntry(f))
	}
	for _, f := range files {
		pf := flags[f.FolderID]
		if pf.locked || pf.deleted {
			continue
		}
		result.Files = append(result.Files, fileEntry(f))
	}
	return result, nil
}
