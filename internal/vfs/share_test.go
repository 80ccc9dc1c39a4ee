package vfs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	file := mustUpload(t, svc, user.ID, user.RootFolderID, "a.txt", "x")

	share, err := svc.CreateShare(ctx, user.ID, KindFile, file.ID, "", nil, "")
	require.NoError(t, err)
	assert.Len(t, share.Token, 32)
	assert.Nil(t, share.ExpiresAt, "no TTL means the share never expires")

	target, err := svc.ResolveShare(ctx, share.Token)
	require.NoError(t, err)
	assert.Equal(t, KindFile, target.Kind)
	assert.Equal(t, file.ID, target.ItemID)
	assert.Equal(t, "a.txt", target.Name)
	assert.False(t, target.RequiresPassword)
}

func TestShareLazyExpiry(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	file := mustUpload(t, svc, user.ID, user.RootFolderID, "a.txt", "x")

	share, err := svc.CreateShare(ctx, user.ID, KindFile, file.ID, "1h", nil, "")
	require.NoError(t, err)
	require.NotNil(t, share.ExpiresAt)

	_, err = svc.ResolveShare(ctx, share.Token)
	require.NoError(t, err, "the share is live before its deadline")

	clock.Advance(2 * time.Hour)
	_, err = svc.ResolveShare(ctx, share.Token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestShareAbsoluteExpiry(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	file := mustUpload(t, svc, user.ID, user.RootFolderID, "a.txt", "x")

	deadline := clock.Now().Add(30 * time.Minute)
	share, err := svc.CreateShare(ctx, user.ID, KindFile, file.ID, "", &deadline, "")
	require.NoError(t, err)
	require.NotNil(t, share.ExpiresAt)
	assert.Equal(t, deadline, *share.ExpiresAt)

	_, err = svc.ResolveShare(ctx, share.Token)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = svc.ResolveShare(ctx, share.Token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestShareUnknownTTL(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := mustUser(t, svc, "alice", 0)
	file := mustUpload(t, svc, user.ID, user.RootFolderID, "a.txt", "x")

	_, err := svc.CreateShare(context.Background(), user.ID, KindFile, file.ID, "3d", nil, "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSharePasswordGate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	docs := mustFolder(t, svc, user.ID, user.RootFolderID, "docs")

	share, err := svc.CreateShare(ctx, user.ID, KindFolder, docs.ID, "", nil, "hunter2")
	require.NoError(t, err)

	target, err := svc.ResolveShare(ctx, share.Token)
	require.NoError(t, err)
	assert.True(t, target.RequiresPassword)

	ok, err := svc.VerifySharePassword(ctx, share.Token, "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.VerifySharePassword(ctx, share.Token, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShareReplacesPrior(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	file := mustUpload(t, svc, user.ID, user.RootFolderID, "a.txt", "x")

	first, err := svc.CreateShare(ctx, user.ID, KindFile, file.ID, "", nil, "")
	require.NoError(t, err)
	second, err := svc.CreateShare(ctx, user.ID, KindFile, file.ID, "", nil, "")
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	_, err = svc.ResolveShare(ctx, first.Token)
	assert.ErrorIs(t, err, ErrNotFound, "reissuing invalidates the old token")
	_, err = svc.ResolveShare(ctx, second.Token)
	assert.NoError(t, err)
}

func TestCancelShare(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	file := mustUpload(t, svc, user.ID, user.RootFolderID, "a.txt", "x")

	share, err := svc.CreateShare(ctx, user.ID, KindFile, file.ID, "", nil, "pw")
	require.NoError(t, err)
	require.NoError(t, svc.CancelShare(ctx, user.ID, KindFile, file.ID))

	_, err = svc.ResolveShare(ctx, share.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShareOfTrashedItemHidden(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := mustUser(t, svc, "alice", 0)
	file := mustUpload(t, svc, user.ID, user.RootFolderID, "a.txt", "x")

	share, err := svc.CreateShare(ctx, user.ID, KindFile, file.ID, "", nil, "")
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, user.ID, []uint{file.ID}, nil))

	_, err = svc.ResolveShare(ctx, share.Token)
	assert.ErrorIs(t, err, ErrNotFound, "trashed items resolve like missing ones")
}

func TestShareForeignItem(t *testing.T) {
	svc, _, _ := newTestService(t)
	alice := mustUser(t, svc, "alice", 0)
	bob := mustUser(t, svc, "bob", 0)
	file := mustUpload(t, svc, bob.ID, bob.RootFolderID, "a.txt", "x")

	_, err := svc.CreateShare(context.Background(), alice.ID, KindFile, file.ID, "", nil, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
