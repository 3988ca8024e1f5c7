package media

import (
	"context"
	"errors"
	"io"
)

// ErrFileNotFound is returned by Store.Open for missing files.
var ErrFileNotFound = errors.New("file not found")

// Store keeps image files. Implementations: local filesystem and S3-compatible object storage.
type Store interface {
	// Put writes a file into area.
	Put(ctx context.Context, area Area, name string, r io.Reader, size int64, contentType string) error

	// Exists reports whether name is present in area.
	Exists(ctx context.Context, area Area, name string) (bool, error)

	// Move relocates name from one area to another.
	Move(ctx context.Context, name string, from, to Area) error

	// Remove deletes name from area. Missing files are not an error.
	Remove(ctx context.Context, area Area, name string) error

	// Open returns a reader for name in area, or ErrFileNotFound.
	Open(ctx context.Context, area Area, name string) (io.ReadCloser, error)
}

// Repository persists image records.
type Repository interface {
	// Create inserts img and sets its ID.
	Create(ctx context.Context, img *Image) error

	// ListByPosts returns images of the given posts, grouped by post and ordered.
	ListByPosts(ctx context.Context, postIDs []int64) (map[int64][]Image, error)
}
