package post

import (
	"context"

	"postboard/internal/core/id"
	"postboard/internal/domain/query"
)

// Repository persists posts. Find and Count execute composed list options;
// Find and GetByID return posts with Author filled in.
type Repository interface {
	query.Source[Post]

	// GetByID retrieves a post by ID.
	GetByID(ctx context.Context, postID id.ID) (*Post, error)

	// Create inserts p and sets its ID and timestamps.
	Create(ctx context.Context, p *Post) error

	// Update saves title and content of p.
	Update(ctx context.Context, p *Post) error

	// Delete removes a post and its image records.
	Delete(ctx context.Context, postID id.ID) error
}

// BulkCreator is implemented by repositories that insert many posts in one
// round trip. IDs are not reported back.
type BulkCreator interface {
	CreateMany(ctx context.Context, posts []Post) (int64, error)
}

// Cache keeps single posts by ID. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, postID id.ID) (*Post, bool)
	Set(ctx context.Context, p *Post)
	Invalidate(ctx context.Context, postID id.ID)
}
