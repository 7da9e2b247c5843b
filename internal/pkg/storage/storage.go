package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a stored object does not exist.
var ErrNotFound = errors.New("file not found")

// Storage is the interface for gallery file backends. Keys are logical
// paths like "galleries/<slug>/<id>.jpg".
type Storage interface {
	// Put stores a file under the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get opens a stored file for reading. Returns ErrNotFound when the
	// backing object is missing.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every object under the given key prefix.
	// Used when a whole gallery is deleted.
	DeletePrefix(ctx context.Context, prefix string) error

	// Exists checks whether a file exists.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL for a key.
	GetURL(key string) string
}
