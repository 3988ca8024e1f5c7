// Package tx declares the transaction boundary used by domain services.
// Storage drivers provide the implementations.
package tx

import (
	"context"
)

// Manager runs fn atomically. A transaction already carried by ctx is reused,
// so services can nest calls freely. Any error from fn rolls everything back.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager also offers read-only transactions for consistent reads.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
