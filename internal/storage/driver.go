// Package storage defines the capability contract every physical backend
// implements, plus the registry that selects the active one. Drivers never
// see tree structure; they work on opaque keys scoped by a user prefix.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Backend tags. A file row records the tag of the driver that produced its
// physical key, so mixed-backend history survives a backend switch.
const (
	BackendS3       = "s3"
	BackendWebDAV   = "webdav"
	BackendTelegram = "telegram"
	BackendMemory   = "memory"
)

var (
	// ErrNotFound means the backend has no object under the given key.
	ErrNotFound = errors.New("storage: object not found")
	// ErrUnavailable means the backend could not be reached.
	ErrUnavailable = errors.New("storage: backend unavailable")
	// ErrRejected means the backend refused the request.
	ErrRejected = errors.New("storage: backend rejected request")
)

// Object describes one physical object returned by List.
type Object struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}

// Driver is the pluggable backend contract. Adding a backend requires no
// change to the tree layer.
type Driver interface {
	// Upload stores content under a fresh key inside userScope and returns
	// the key. Keys are always prefixed by userScope so cross-tenant
	// collisions are impossible.
	Upload(ctx context.Context, content io.Reader, name, mimeType, userScope string) (string, error)

	// Download returns the content stream, content type and length for key.
	Download(ctx context.Context, key string) (io.ReadCloser, string, int64, error)

	// Remove deletes the given keys best-effort. Individual failures are
	// logged, never returned: the caller's metadata deletion must proceed
	// regardless.
	Remove(ctx context.Context, keys []string)

	// Move renames the physical object and returns the authoritative key.
	// Backends without atomic rename copy then delete the source; a failed
	// source delete after a successful copy is not an error.
	Move(ctx context.Context, oldKey, newKey string) (string, error)

	// List enumerates objects under prefix for reconciliation. A single
	// page is acceptable.
	List(ctx context.Context, prefix string) ([]Object, error)
}
