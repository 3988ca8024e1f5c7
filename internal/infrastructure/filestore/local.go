// Package filestore provides media.Store implementations: a local directory
// tree and S3-compatible object storage.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"postboard/internal/domain/media"
)

var _ media.Store = (*Local)(nil)

// Local keeps files under Root/<area>/<name>.
type Local struct {
	Root string
}

// NewLocal creates the area directories under root.
func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	for _, area := range []media.Area{media.AreaTemp, media.AreaPosts} {
		if err := os.MkdirAll(filepath.Join(abs, string(area)), 0o755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", area, err)
		}
	}
	return &Local{Root: abs}, nil
}

func (l *Local) path(area media.Area, name string) string {
	return filepath.Join(l.Root, string(area), filepath.Base(name))
}

// Put writes r to area/name.
func (l *Local) Put(_ context.Context, area media.Area, name string, r io.Reader, _ int64, _ string) error {
	dst, err := os.Create(l.path(area, name))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return fmt.Errorf("write file: %w", err)
	}
	return dst.Close()
}

// Exists reports whether area/name is a regular file.
func (l *Local) Exists(_ context.Context, area media.Area, name string) (bool, error) {
	info, err := os.Stat(l.path(area, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Move renames name from one area directory to the other.
func (l *Local) Move(_ context.Context, name string, from, to media.Area) error {
	if err := os.Rename(l.path(from, name), l.path(to, name)); err != nil {
		return fmt.Errorf("move %s: %w", name, err)
	}
	return nil
}

// Remove deletes area/name.
func (l *Local) Remove(_ context.Context, area media.Area, name string) error {
	err := os.Remove(l.path(area, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Open returns a reader for area/name.
func (l *Local) Open(_ context.Context, area media.Area, name string) (io.ReadCloser, error) {
	f, err := os.Open(l.path(area, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, media.ErrFileNotFound
	}
	return f, err
}
