package vfs

import (
	"context"
	"errors"
	"io"

	"filedepot/internal/models"
)

// UploadInput describes one incoming file.
type UploadInput struct {
	FolderID uint
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}

// Upload admits the file against the user's quota, stores the bytes on the
// active backend and creates the metadata row. A sibling name collision is
// resolved by probing, never by failing.
func (s *Service) Upload(ctx context.Context, userID uint, in UploadInput) (*models.File, error) {
	if in.Name == "" {
		return nil, ErrInvalidState
	}
	if _, err := s.folder(ctx, s.db, userID, in.FolderID); err != nil {
		return nil, err
	}
	if err := s.CheckQuota(ctx, userID, in.Size); err != nil {
		return nil, err
	}

	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	tag, driver, err := s.registry.Active()
	if err != nil {
		return nil, err
	}

	name, err := s.resolveName(ctx, s.db, userID, in.FolderID, in.Name, true)
	if err != nil {
		return nil, err
	}

	key, err := driver.Upload(ctx, in.Content, name, mimeType, userScope(userID))
	if err != nil {
		return nil, err
	}

	file := models.File{
		Name:        name,
		FolderID:    in.FolderID,
		OwnerID:     userID,
		PhysicalKey: key,
		Backend:     tag,
		MimeType:    mimeType,
		Size:        in.Size,
	}
	err = s.db.WithContext(ctx).Create(&file).Error
	if errors.Is(classify(err), ErrAlreadyExists) {
		// A concurrent upload won the probed name; probe once more.
		name, rerr := s.resolveName(ctx, s.db, userID, in.FolderID, in.Name, true)
		if rerr != nil {
			err = rerr
		} else {
			file.ID = 0
			file.Name = name
			err = s.db.WithContext(ctx).Create(&file).Error
		}
	}
	if err != nil {
		// The row never existed, so the uploaded object is unreachable.
		driver.Remove(ctx, []string{key})
		return nil, classify(err)
	}
	return &file, nil
}

// Download returns the content stream for a file, resolved through the
// driver that produced its physical key.
func (s *Service) Download(ctx context.Context, userID, fileID uint) (io.ReadCloser, *models.File, error) {
	file, err := s.file(ctx, s.db, userID, fileID)
	if err != nil {
		return nil, nil, err
	}
	driver, err := s.registry.Get(file.Backend)
	if err != nil {
		return nil, nil, err
	}
	stream, _, _, err := driver.Download(ctx, file.PhysicalKey)
	if err != nil {
		return nil, nil, err
	}
	return stream, file, nil
}

// RenameFile gives a file a new display name within its folder. A live
// sibling with the same name fails with ErrAlreadyExists. Physical keys are
// ID-addressed, so storage is untouched.
func (s *Service) RenameFile(ctx context.Context, userID, fileID uint, name string) (*models.File, error) {
	if name == "" {
		return nil, ErrInvalidState
	}
	file, err := s.file(ctx, s.db, userID, fileID)
	if err != nil {
		return nil, err
	}
	if file.Name == name {
		return file, nil
	}
	if err := s.db.WithContext(ctx).Model(file).Update("name", name).Error; err != nil {
		return nil, classify(err)
	}
	file.Name = name
	return file, nil
}
