package vfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name string
		stem string
		ext  string
	}{
		{"report.txt", "report", ".txt"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"README", "README", ""},
		{".bashrc", ".bashrc", ""},
		{"noise.", "noise", "."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stem, ext := splitExt(tt.name)
			assert.Equal(t, tt.stem, stem)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestResolveNameProbesFiles(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	root := user.RootFolderID

	name, err := svc.resolveName(ctx, svc.db, user.ID, root, "a.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", name, "free name must come back unchanged")

	mustUpload(t, svc, user.ID, root, "a.txt", "one")
	name, err = svc.resolveName(ctx, svc.db, user.ID, root, "a.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "a (1).txt", name)

	mustUpload(t, svc, user.ID, root, "a (1).txt", "two")
	name, err = svc.resolveName(ctx, svc.db, user.ID, root, "a.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "a (2).txt", name)
}

func TestResolveNameProbesFolders(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	root := user.RootFolderID

	mustFolder(t, svc, user.ID, root, "docs")
	name, err := svc.resolveName(ctx, svc.db, user.ID, root, "docs", false)
	require.NoError(t, err)
	assert.Equal(t, "docs (1)", name, "folder names are not split at dots")
}

func TestResolveNameIgnoresTrashedSiblings(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	root := user.RootFolderID

	file := mustUpload(t, svc, user.ID, root, "a.txt", "one")
	require.NoError(t, svc.SoftDelete(ctx, user.ID, []uint{file.ID}, nil))

	name, err := svc.resolveName(ctx, svc.db, user.ID, root, "a.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", name, "a trashed sibling must not block its name")
}

func TestUploadResolvesCollisions(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := mustUser(t, svc, "alice", 0)
	root := user.RootFolderID

	mustUpload(t, svc, user.ID, root, "a.txt", "one")
	second := mustUpload(t, svc, user.ID, root, "a.txt", "two")
	assert.Equal(t, "a (1).txt", second.Name)

	_, files := listNames(t, svc, user.ID, root)
	assert.Equal(t, []string{"a (1).txt", "a.txt"}, files)
}
