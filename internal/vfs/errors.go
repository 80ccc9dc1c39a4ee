// Package vfs implements the virtual filesystem layer: folder/file tree
// operations, soft-delete lifecycle, quota admission, move semantics and
// sharing, all scoped per user and backed by interchangeable storage drivers.
package vfs

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound covers both "does not exist" and "not owned by the
	// caller" so existence never leaks across tenants.
	ErrNotFound = errors.New("item not found")
	// ErrAlreadyExists is a name collision with a non-deleted sibling.
	ErrAlreadyExists = errors.New("item already exists")
	// ErrQuotaExceeded rejects an upload that would pass the user's ceiling.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrInvalidState rejects structurally invalid requests, e.g. moving a
	// folder into its own descendant.
	ErrInvalidState = errors.New("invalid state for operation")
	// ErrExpired is returned when a share token is resolved past its expiry.
	ErrExpired = errors.New("share link expired")
)

// classify maps storage-engine errors into the package taxonomy so callers
// never see dialect-specific errors.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrAlreadyExists
	default:
		return err
	}
}
