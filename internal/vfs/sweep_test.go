package vfs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetentionSweepPurgesOldTrash(t *testing.T) {
	svc, driver, clock := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	root := user.RootFolderID

	old := mustUpload(t, svc, user.ID, root, "old.txt", "old")
	require.NoError(t, svc.SoftDelete(ctx, user.ID, []uint{old.ID}, nil))

	// Trash something else well inside the window.
	clock.Advance(29 * 24 * time.Hour)
	fresh := mustUpload(t, svc, user.ID, root, "fresh.txt", "fresh")
	require.NoError(t, svc.SoftDelete(ctx, user.ID, []uint{fresh.ID}, nil))

	clock.Advance(2 * 24 * time.Hour)
	stats, err := svc.RetentionSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Owners)
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 0, stats.Folders)

	assert.False(t, driver.Exists(old.PhysicalKey))
	assert.True(t, driver.Exists(fresh.PhysicalKey), "trash inside the window survives")

	trash, err := svc.TrashContents(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, trash.Files, 1)
	assert.Equal(t, fresh.ID, trash.Files[0].ID)
}

func TestRetentionSweepSpansUsers(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	alice := mustUser(t, svc, "alice", 0)
	bob := mustUser(t, svc, "bob", 0)

	docs := mustFolder(t, svc, alice.ID, alice.RootFolderID, "docs")
	file := mustUpload(t, svc, bob.ID, bob.RootFolderID, "a.txt", "x")
	require.NoError(t, svc.SoftDelete(ctx, alice.ID, nil, []uint{docs.ID}))
	require.NoError(t, svc.SoftDelete(ctx, bob.ID, []uint{file.ID}, nil))

	clock.Advance(31 * 24 * time.Hour)
	stats, err := svc.RetentionSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Owners)
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 1, stats.Folders)
}

func TestRetentionSweepNoop(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := mustUser(t, svc, "alice", 0)
	mustUpload(t, svc, user.ID, user.RootFolderID, "a.txt", "x")

	stats, err := svc.RetentionSweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Owners)
	assert.Zero(t, stats.Files)
}

func TestRetentionWindowOption(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil, WithRetention(7*24*time.Hour))
	assert.Equal(t, 7*24*time.Hour, svc.retention)
}
