package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"filedepot/internal/logger"
)

type memObject struct {
	data      []byte
	mimeType  string
	updatedAt time.Time
}

// MemoryDriver is a map-backed driver for tests and local development.
type MemoryDriver struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{objects: make(map[string]memObject)}
}

func (d *MemoryDriver) Upload(ctx context.Context, content io.Reader, name, mimeType, userScope string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("%w: read content: %v", ErrRejected, err)
	}
	key := fmt.Sprintf("%s/%s_%s", userScope, uuid.New().String(), name)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects[key] = memObject{data: data, mimeType: mimeType, updatedAt: time.Now()}
	return key, nil
}

func (d *MemoryDriver) Download(ctx context.Context, key string) (io.ReadCloser, string, int64, error) {
	d.mu.RLock()
	obj, ok := d.objects[key]
	d.mu.RUnlock()
	if !ok {
		return nil, "", 0, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.mimeType, int64(len(obj.data)), nil
}

func (d *MemoryDriver) Remove(ctx context.Context, keys []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, key := range keys {
		if _, ok := d.objects[key]; !ok {
			logger.Debug("memory: remove of missing object %s ignored", key)
			continue
		}
		delete(d.objects, key)
	}
}

func (d *MemoryDriver) Move(ctx context.Context, oldKey, newKey string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	obj, ok := d.objects[oldKey]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, oldKey)
	}
	d.objects[newKey] = obj
	delete(d.objects, oldKey)
	return newKey, nil
}

func (d *MemoryDriver) List(ctx context.Context, prefix string) ([]Object, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var objects []Object
	for key, obj := range d.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, Object{Key: key, Size: int64(len(obj.data)), UpdatedAt: obj.updatedAt})
	}
	return objects, nil
}

// Exists reports whether a key is still stored. Test helper.
func (d *MemoryDriver) Exists(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.objects[key]
	return ok
}

// Len reports the number of stored objects. Test helper.
func (d *MemoryDriver) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.objects)
}

// Put stores an object under an explicit key. Test helper for seeding
// reconciliation scenarios.
func (d *MemoryDriver) Put(key string, data []byte, mimeType string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects[key] = memObject{data: data, mimeType: mimeType, updatedAt: time.Now()}
}
