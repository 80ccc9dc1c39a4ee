package vfs

import (
	"context"
	"strconv"
	"time"

	"gorm.io/gorm"

	"filedepot/internal/models"
	"filedepot/internal/storage"
)

const defaultRetention = 30 * 24 * time.Hour

// Service exposes the tree operations. Handlers construct one per process
// and call it with resolved user IDs; there is no in-process locking, the
// database's constraints are the race-resolution point.
type Service struct {
	db        *gorm.DB
	registry  *storage.Registry
	retention time.Duration
	now       func() time.Time
}

type Option func(*Service)

// WithClock replaces the time source, used by expiry and sweep tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRetention overrides how long trashed items are kept before the sweep
// purges them.
func WithRetention(d time.Duration) Option {
	return func(s *Service) { s.retention = d }
}

func New(db *gorm.DB, registry *storage.Registry, opts ...Option) *Service {
	s := &Service{
		db:        db,
		registry:  registry,
		retention: defaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// notDeleted is the shared scope enforcing the soft-delete invariant; every
// query that should only see live rows goes through it.
func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// folder loads a non-deleted folder owned by userID. Ownership and existence
// collapse into ErrNotFound.
func (s *Service) folder(ctx context.Context, tx *gorm.DB, userID, folderID uint) (*models.Folder, error) {
	var folder models.Folder
	err := tx.WithContext(ctx).Scopes(notDeleted).
		Where("id = ? AND owner_id = ?", folderID, userID).
		First(&folder).Error
	if err != nil {
		return nil, classify(err)
	}
	return &folder, nil
}

// file loads a non-deleted file owned by userID.
func (s *Service) file(ctx context.Context, tx *gorm.DB, userID, fileID uint) (*models.File, error) {
	var file models.File
	err := tx.WithContext(ctx).Scopes(notDeleted).
		Where("id = ? AND owner_id = ?", fileID, userID).
		First(&file).Error
	if err != nil {
		return nil, classify(err)
	}
	return &file, nil
}

// userScope is the tenant prefix handed to storage drivers.
func userScope(userID uint) string {
	return "u" + strconv.FormatUint(uint64(userID), 10)
}
