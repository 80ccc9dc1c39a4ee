package vfs

import (
	"context"

	"filedepot/internal/logger"
	"filedepot/internal/models"
)

// SweepStats summarizes one retention sweep run.
type SweepStats struct {
	Owners  int `json:"owners"`
	Files   int `json:"files"`
	Folders int `json:"folders"`
}

// RetentionSweep permanently purges every item whose deletion timestamp is
// older than the retention window, across all users. Owners are processed
// one batch at a time and each batch commits independently, so cancelling
// mid-run leaves already-purged batches done and the rest untouched for the
// next run.
func (s *Service) RetentionSweep(ctx context.Context) (*SweepStats, error) {
	cutoff := s.now().Add(-s.retention)

	var files []models.File
	err := s.db.WithContext(ctx).
		Select("id", "owner_id").
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	var folders []models.Folder
	err = s.db.WithContext(ctx).
		Select("id", "owner_id").
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Find(&folders).Error
	if err != nil {
		return nil, err
	}

	type batch struct {
		fileIDs   []uint
		folderIDs []uint
	}
	byOwner := make(map[uint]*batch)
	owner := func(id uint) *batch {
		b, ok := byOwner[id]
		if !ok {
			b = &batch{}
			byOwner[id] = b
		}
		return b
	}
	for _, f := range files {
		owner(f.OwnerID).fileIDs = append(owner(f.OwnerID).fileIDs, f.ID)
	}
	for _, f := range folders {
		owner(f.OwnerID).folderIDs = append(owner(f.OwnerID).folderIDs, f.ID)
	}

	stats := &SweepStats{}
	for ownerID, b := range byOwner {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := s.Purge(ctx, ownerID, b.fileIDs, b.folderIDs); err != nil {
			logger.Error("retention sweep: purge failed for user %d: %v", ownerID, err)
			continue
		}
		stats.Owners++
		stats.Files += len(b.fileIDs)
		stats.Folders += len(b.folderIDs)
		logger.Info("retention sweep: purged %d files, %d folders for user %d",
			len(b.fileIDs), len(b.folderIDs), ownerID)
	}
	return stats, nil
}
