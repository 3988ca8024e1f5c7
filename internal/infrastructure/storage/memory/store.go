// Package memory is an in-process storage backend. It implements the same
// repositories as the postgres package and is used for local runs and tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"postboard/internal/core/tx"
	"postboard/internal/domain/auth"
	"postboard/internal/domain/media"
	"postboard/internal/domain/post"
)

// Store holds all tables.
type Store struct {
	mu     sync.RWMutex
	users  map[int64]auth.User
	posts  map[int64]post.Post
	images map[int64]media.Image
	seq    map[string]int64

	// txMu is held for a whole transaction and around every write made
	// outside one, so a rollback only reverts the transaction's own changes.
	txMu sync.Mutex
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:  map[int64]auth.User{},
		posts:  map[int64]post.Post{},
		images: map[int64]media.Image{},
		seq:    map[string]int64{},
	}
}

func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// lockWrite locks the tables for a write and returns the unlock func.
// Outside a transaction the write also waits for txMu.
func (s *Store) lockWrite(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

type snapshot struct {
	users  map[int64]auth.User
	posts  map[int64]post.Post
	images map[int64]media.Image
	seq    map[string]int64
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		users:  maps.Clone(s.users),
		posts:  maps.Clone(s.posts),
		images: maps.Clone(s.images),
		seq:    maps.Clone(s.seq),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.posts, s.images, s.seq = snap.users, snap.posts, snap.images, snap.seq
}

var _ tx.ReadOnlyManager = (*TxManager)(nil)

// TxManager gives the store all-or-nothing semantics: a failed function
// restores the state from before it ran.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager for store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

type txKey struct{}

// RunInTransaction executes fn, rolling back on error. Nested calls join the outer one.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// ReadOnly executes fn without taking a snapshot.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
