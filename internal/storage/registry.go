package storage

import (
	"context"
	"fmt"
	"sync"

	"filedepot/internal/logger"
	"filedepot/internal/repositories"
)

// Registry holds the configured drivers and tracks which one is active for
// new uploads. The active tag lives in the settings table so an admin can
// switch backends; Reload applies such a change explicitly.
type Registry struct {
	mu       sync.RWMutex
	drivers  map[string]Driver
	active   string
	fallback string
	settings *repositories.Settings
}

func NewRegistry(settings *repositories.Settings, fallback string) *Registry {
	return &Registry{
		drivers:  make(map[string]Driver),
		active:   fallback,
		fallback: fallback,
		settings: settings,
	}
}

// Register adds a driver under its backend tag, replacing any previous one.
func (r *Registry) Register(tag string, d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[tag] = d
}

// Get returns the driver for a backend tag. Used when operating on files
// whose physical key predates a backend switch.
func (r *Registry) Get(tag string) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drivers[tag]
	if !ok {
		return nil, fmt.Errorf("%w: no driver registered for backend %q", ErrUnavailable, tag)
	}
	return d, nil
}

// Active returns the tag and driver new uploads should use.
func (r *Registry) Active() (string, Driver, error) {
	r.mu.RLock()
	tag := r.active
	r.mu.RUnlock()
	d, err := r.Get(tag)
	if err != nil {
		return "", nil, err
	}
	return tag, d, nil
}

// Reload re-reads the active backend selection from the settings table.
// Called at startup and after admin config changes.
func (r *Registry) Reload(ctx context.Context) error {
	if r.settings == nil {
		return nil
	}
	tag, err := r.settings.Get(ctx, repositories.SettingActiveBackend, r.fallback)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[tag]; !ok {
		logger.Warn("active backend %q has no registered driver, keeping %q", tag, r.active)
		return nil
	}
	if tag != r.active {
		logger.Info("active storage backend switched from %q to %q", r.active, tag)
		r.active = tag
	}
	return nil
}
