package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/google/uuid"
	"github.com/studio-b12/gowebdav"

	"filedepot/internal/config"
	"filedepot/internal/logger"
)

// WebDAVDriver stores objects on a WebDAV server under a fixed root
// collection.
type WebDAVDriver struct {
	client *gowebdav.Client
	root   string
}

func NewWebDAVDriver(cfg config.WebDAVConfig) *WebDAVDriver {
	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	return &WebDAVDriver{client: client, root: cfg.Root}
}

func (d *WebDAVDriver) Upload(ctx context.Context, content io.Reader, name, mimeType, userScope string) (string, error) {
	key := path.Join(d.root, userScope, uuid.New().String()+"_"+name)
	if err := d.client.MkdirAll(path.Dir(key), 0755); err != nil {
		return "", fmt.Errorf("%w: mkdir %s: %v", ErrUnavailable, path.Dir(key), err)
	}
	if err := d.client.WriteStream(key, content, 0644); err != nil {
		return "", fmt.Errorf("%w: put %s: %v", ErrRejected, key, err)
	}
	return key, nil
}

func (d *WebDAVDriver) Download(ctx context.Context, key string) (io.ReadCloser, string, int64, error) {
	info, err := d.client.Stat(key)
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, "", 0, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, "", 0, fmt.Errorf("%w: stat %s: %v", ErrUnavailable, key, err)
	}
	stream, err := d.client.ReadStream(key)
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: get %s: %v", ErrUnavailable, key, err)
	}
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return stream, contentType, info.Size(), nil
}

func (d *WebDAVDriver) Remove(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := d.client.Remove(key); err != nil {
			if gowebdav.IsErrCode(err, http.StatusNotFound) {
				continue
			}
			logger.Warn("webdav: failed to remove %s: %v", key, err)
		}
	}
}

func (d *WebDAVDriver) Move(ctx context.Context, oldKey, newKey string) (string, error) {
	if err := d.client.Rename(oldKey, newKey, true); err == nil {
		return newKey, nil
	}
	// Some servers refuse MOVE; fall back to copy-then-delete-source.
	if err := d.client.Copy(oldKey, newKey, true); err != nil {
		return "", fmt.Errorf("%w: copy %s -> %s: %v", ErrUnavailable, oldKey, newKey, err)
	}
	if err := d.client.Remove(oldKey); err != nil {
		logger.Warn("webdav: failed to remove source %s after copy: %v", oldKey, err)
	}
	return newKey, nil
}

func (d *WebDAVDriver) List(ctx context.Context, prefix string) ([]Object, error) {
	dir := path.Join(d.root, prefix)
	entries, err := d.client.ReadDir(dir)
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: list %s: %v", ErrUnavailable, dir, err)
	}
	var objects []Object
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		objects = append(objects, Object{
			Key:       path.Join(dir, entry.Name()),
			Size:      entry.Size(),
			UpdatedAt: entry.ModTime(),
		})
	}
	return objects, nil
}
