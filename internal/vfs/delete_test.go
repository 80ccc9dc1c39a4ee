package vfs

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree creates root/a/b/c with one file at every level and returns the
// folders plus files by level.
func buildTree(t *testing.T, svc *Service, userID, rootID uint) (folders [3]uint, files [4]uint) {
	a := mustFolder(t, svc, userID, rootID, "a")
	b := mustFolder(t, svc, userID, a.ID, "b")
	c := mustFolder(t, svc, userID, b.ID, "c")
	folders = [3]uint{a.ID, b.ID, c.ID}
	files[0] = mustUpload(t, svc, userID, rootID, "top.txt", "0").ID
	files[1] = mustUpload(t, svc, userID, a.ID, "one.txt", "1").ID
	files[2] = mustUpload(t, svc, userID, b.ID, "two.txt", "2").ID
	files[3] = mustUpload(t, svc, userID, c.ID, "three.txt", "3").ID
	return folders, files
}

func TestRecursiveSoftDeleteAndRestore(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	root := user.RootFolderID
	folders, _ := buildTree(t, svc, user.ID, root)

	require.NoError(t, svc.SoftDelete(ctx, user.ID, nil, []uint{folders[0]}))

	folderNames, fileNames := listNames(t, svc, user.ID, root)
	assert.Empty(t, folderNames, "deleted subtree must vanish from listings")
	assert.Equal(t, []string{"top.txt"}, fileNames)

	res, err := svc.Search(ctx, user.ID, "two")
	require.NoError(t, err)
	assert.Empty(t, res.Files, "descendants of a deleted folder must not be searchable")

	// Listing inside the deleted subtree fails as not found.
	_, err = svc.List(ctx, user.ID, folders[1])
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Restore(ctx, user.ID, nil, []uint{folders[0]}))

	folderNames, _ = listNames(t, svc, user.ID, root)
	assert.Equal(t, []string{"a"}, folderNames)
	res, err = svc.Search(ctx, user.ID, "two")
	require.NoError(t, err)
	assert.Len(t, res.Files, 1, "restore must bring back exactly the deleted set")
}

func TestSoftDeleteIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	file := mustUpload(t, svc, user.ID, user.RootFolderID, "a.txt", "x")

	require.NoError(t, svc.SoftDelete(ctx, user.ID, []uint{file.ID}, nil))
	require.NoError(t, svc.SoftDelete(ctx, user.ID, []uint{file.ID}, nil))
	require.NoError(t, svc.Restore(ctx, user.ID, []uint{file.ID}, nil))
	require.NoError(t, svc.Restore(ctx, user.ID, []uint{file.ID}, nil))
}

func TestRootFolderNotDeletable(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := mustUser(t, svc, "alice", 0)

	err := svc.SoftDelete(context.Background(), user.ID, nil, []uint{user.RootFolderID})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPurgeRemovesPhysicalAndRows(t *testing.T) {
	svc, driver, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	root := user.RootFolderID

	docs := mustFolder(t, svc, user.ID, root, "docs")
	file := mustUpload(t, svc, user.ID, docs.ID, "a.txt", "payload")
	require.True(t, driver.Exists(file.PhysicalKey))

	require.NoError(t, svc.Purge(ctx, user.ID, nil, []uint{docs.ID}))

	assert.False(t, driver.Exists(file.PhysicalKey), "purge must remove the physical object")
	_, _, err := svc.Download(ctx, user.ID, file.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.List(ctx, user.ID, docs.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmptyTrash(t *testing.T) {
	svc, driver, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	root := user.RootFolderID

	keep := mustUpload(t, svc, user.ID, root, "keep.txt", "keep")
	gone := mustUpload(t, svc, user.ID, root, "gone.txt", "gone")
	require.NoError(t, svc.SoftDelete(ctx, user.ID, []uint{gone.ID}, nil))

	require.NoError(t, svc.EmptyTrash(ctx, user.ID))

	trash, err := svc.TrashContents(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, trash.Files)
	assert.False(t, driver.Exists(gone.PhysicalKey))
	assert.True(t, driver.Exists(keep.PhysicalKey))

	// Emptying an empty trash is a no-op success.
	require.NoError(t, svc.EmptyTrash(ctx, user.ID))
}

func TestTrashContents(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	root := user.RootFolderID

	docs := mustFolder(t, svc, user.ID, root, "docs")
	file := mustUpload(t, svc, user.ID, root, "a.txt", "x")
	require.NoError(t, svc.SoftDelete(ctx, user.ID, []uint{file.ID}, []uint{docs.ID}))

	trash, err := svc.TrashContents(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, trash.Folders, 1)
	assert.Len(t, trash.Files, 1)
}

func TestDownloadRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)

	file := mustUpload(t, svc, user.ID, user.RootFolderID, "a.txt", "payload")
	stream, meta, err := svc.Download(ctx, user.ID, file.ID)
	require.NoError(t, err)
	defer stream.Close()

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, "a.txt", meta.Name)
}

func TestDeleteUserCascades(t *testing.T) {
	svc, driver, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, "admin", "secret", 0, true)
	require.NoError(t, err)
	user := mustUser(t, svc, "alice", 0)
	file := mustUpload(t, svc, user.ID, user.RootFolderID, "a.txt", "x")

	// Non-admins cannot delete users.
	err = svc.DeleteUser(ctx, user.ID, user.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, user.ID))
	assert.False(t, driver.Exists(file.PhysicalKey))
	_, err = svc.GetQuota(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
