package vfs

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"filedepot/internal/models"
	"filedepot/internal/repositories"
	"filedepot/internal/storage"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repositories.Migrate(db))
	return db
}

func newTestService(t *testing.T) (*Service, *storage.MemoryDriver, *fakeClock) {
	t.Helper()
	db := newTestDB(t)

	driver := storage.NewMemoryDriver()
	registry := storage.NewRegistry(nil, storage.BackendMemory)
	registry.Register(storage.BackendMemory, driver)

	clock := newFakeClock()
	svc := New(db, registry, WithClock(clock.Now))
	return svc, driver, clock
}

func mustUser(t *testing.T, svc *Service, username string, quota int64) *models.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), username, "secret", quota, false)
	require.NoError(t, err)
	return user
}

func mustFolder(t *testing.T, svc *Service, userID, parentID uint, name string) *models.Folder {
	t.Helper()
	res, err := svc.CreateFolder(context.Background(), userID, parentID, name)
	require.NoError(t, err)
	return res.Folder
}

func mustUpload(t *testing.T, svc *Service, userID, folderID uint, name, content string) *models.File {
	t.Helper()
	file, err := svc.Upload(context.Background(), userID, UploadInput{
		FolderID: folderID,
		Name:     name,
		MimeType: "text/plain",
		Size:     int64(len(content)),
		Content:  strings.NewReader(content),
	})
	require.NoError(t, err)
	return file
}

func listNames(t *testing.T, svc *Service, userID, folderID uint) (folders, files []string) {
	t.Helper()
	listing, err := svc.List(context.Background(), userID, folderID)
	require.NoError(t, err)
	for _, f := range listing.Folders {
		folders = append(folders, f.Name)
	}
	for _, f := range listing.Files {
		files = append(files, f.Name)
	}
	return folders, files
}
