package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"postboard/internal/domain/media"
)

var _ media.Store = (*Files)(nil)

// Files is a media.Store kept in memory.
type Files struct {
	mu    sync.RWMutex
	areas map[media.Area]map[string][]byte
}

// NewFiles creates an empty file store.
func NewFiles() *Files {
	return &Files{areas: map[media.Area]map[string][]byte{}}
}

// Put writes a file into area.
func (f *Files) Put(_ context.Context, area media.Area, name string, r io.Reader, _ int64, _ string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.areas[area] == nil {
		f.areas[area] = map[string][]byte{}
	}
	f.areas[area][name] = buf.Bytes()
	return nil
}

// Exists reports whether name is present in area.
func (f *Files) Exists(_ context.Context, area media.Area, name string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.areas[area][name]
	return ok, nil
}

// Move relocates name between areas.
func (f *Files) Move(_ context.Context, name string, from, to media.Area) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.areas[from][name]
	if !ok {
		return fmt.Errorf("file %s not found in %s", name, from)
	}
	if f.areas[to] == nil {
		f.areas[to] = map[string][]byte{}
	}
	f.areas[to][name] = data
	delete(f.areas[from], name)
	return nil
}

// Remove deletes name from area.
func (f *Files) Remove(_ context.Context, area media.Area, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.areas[area], name)
	return nil
}

// Open returns a reader over the stored bytes.
func (f *Files) Open(_ context.Context, area media.Area, name string) (io.ReadCloser, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, ok := f.areas[area][name]
	if !ok {
		return nil, media.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
