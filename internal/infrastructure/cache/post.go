package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"postboard/internal/core/id"
	"postboard/internal/domain/post"
)

// DefaultPostTTL bounds how stale a cached post can be.
const DefaultPostTTL = 5 * time.Minute

var _ post.Cache = (*PostCache)(nil)

// PostCache implements post.Cache on Redis. Errors are logged and treated as misses.
type PostCache struct {
	store *Store[post.Post]
}

// NewPostCache creates a post cache.
func NewPostCache(rc *redis.Client, ttl time.Duration) *PostCache {
	if ttl <= 0 {
		ttl = DefaultPostTTL
	}
	return &PostCache{store: NewStore[post.Post](rc, "post", ttl)}
}

func postKey(postID id.ID) string {
	return strconv.FormatInt(postID, 10)
}

// Get returns a cached post.
func (c *PostCache) Get(ctx context.Context, postID id.ID) (*post.Post, bool) {
	p, ok, err := c.store.Get(ctx, postKey(postID))
	logErr(ctx, "get", postKey(postID), err)
	return p, ok
}

// Set caches p.
func (c *PostCache) Set(ctx context.Context, p *post.Post) {
	logErr(ctx, "set", postKey(p.ID), c.store.Set(ctx, postKey(p.ID), p))
}

// Invalidate drops the cached copy of postID.
func (c *PostCache) Invalidate(ctx context.Context, postID id.ID) {
	logErr(ctx, "delete", postKey(postID), c.store.Delete(ctx, postKey(postID)))
}
