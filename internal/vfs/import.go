package vfs

import (
	"context"
	"errors"
	"path"
	"strings"

	"filedepot/internal/logger"
	"filedepot/internal/models"
)

// ImportProgress is emitted once per physical object during a
// reconciliation import.
type ImportProgress struct {
	Key      string
	Imported bool
	Err      error
}

// ImportFromBackend lists the user's scope on the active backend and
// creates file rows for objects not yet referenced by any metadata, placing
// them in folderID. Each imported object commits independently, so the scan
// can be cancelled mid-stream without inconsistent rows; progress streams
// through report.
func (s *Service) ImportFromBackend(ctx context.Context, userID, folderID uint, report func(ImportProgress)) (int, error) {
	if report == nil {
		report = func(ImportProgress) {}
	}
	if _, err := s.folder(ctx, s.db, userID, folderID); err != nil {
		return 0, err
	}
	tag, driver, err := s.registry.Active()
	if err != nil {
		return 0, err
	}

	// The trailing delimiter keeps scope "u1" from matching "u11"'s keys.
	objects, err := driver.List(ctx, userScope(userID)+"/")
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return imported, err
		}

		var count int64
		err := s.db.WithContext(ctx).Model(&models.File{}).
			Where("physical_key = ?", obj.Key).
			Count(&count).Error
		if err != nil {
			return imported, err
		}
		if count > 0 {
			report(ImportProgress{Key: obj.Key})
			continue
		}

		name, err := s.resolveName(ctx, s.db, userID, folderID, importName(obj.Key), true)
		if err != nil {
			report(ImportProgress{Key: obj.Key, Err: err})
			continue
		}
		file := models.File{
			Name:        name,
			FolderID:    folderID,
			OwnerID:     userID,
			PhysicalKey: obj.Key,
			Backend:     tag,
			MimeType:    "application/octet-stream",
			Size:        obj.Size,
		}
		err = s.db.WithContext(ctx).Create(&file).Error
		if err != nil && !errors.Is(classify(err), ErrAlreadyExists) {
			report(ImportProgress{Key: obj.Key, Err: err})
			logger.Warn("import: failed to record %s: %v", obj.Key, err)
			continue
		}
		imported++
		report(ImportProgress{Key: obj.Key, Imported: true})
	}
	logger.Info("import: %d of %d objects recorded for user %d", imported, len(objects), userID)
	return imported, nil
}

// importName derives a display name from a physical key: the base path
// element, with the "uuid_" upload prefix stripped when present.
func importName(key string) string {
	base := path.Base(key)
	if i := strings.IndexByte(base, '_'); i > 0 && i == 36 {
		return base[i+1:]
	}
	return base
}
