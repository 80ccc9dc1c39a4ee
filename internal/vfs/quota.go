package vfs

import (
	"context"

	"filedepot/internal/models"
)

// Quota is a user's current logical usage against their ceiling. A zero
// limit means unlimited.
type Quota struct {
	UsedBytes  int64 `json:"usedBytes"`
	LimitBytes int64 `json:"limitBytes"`
}

// Usage sums the sizes of the user's non-deleted files. Trashed files stop
// counting immediately even though their bytes stay on the backend until
// purge: deletion frees quota, purge is lazy.
func (s *Service) Usage(ctx context.Context, userID uint) (int64, error) {
	var used int64
	err := s.db.WithContext(ctx).Model(&models.File{}).Scopes(notDeleted).
		Where("owner_id = ?", userID).
		Select("COALESCE(SUM(size), 0)").
		Scan(&used).Error
	if err != nil {
		return 0, err
	}
	return used, nil
}

// GetQuota returns usage and ceiling for a user.
func (s *Service) GetQuota(ctx context.Context, userID uint) (*Quota, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, classify(err)
	}
	used, err := s.Usage(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Quota{UsedBytes: used, LimitBytes: user.QuotaBytes}, nil
}

// CheckQuota admits an upload of size bytes. The check is a soft limit:
// concurrent uploads may transiently pass it together, which is accepted.
func (s *Service) CheckQuota(ctx context.Context, userID uint, size int64) error {
	quota, err := s.GetQuota(ctx, userID)
	if err != nil {
		return err
	}
	if quota.LimitBytes == 0 {
		return nil
	}
	if quota.UsedBytes+size > quota.LimitBytes {
		return ErrQuotaExceeded
	}
	return nil
}
