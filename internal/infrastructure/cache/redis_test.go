package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/domain/post"
)

func TestPostCache_NilClientIsNoop(t *testing.T) {
	ctx := context.Background()
	c := NewPostCache(nil, 0)

	c.Set(ctx, &post.Post{ID: 1, Title: "t"})
	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)
	c.Invalidate(ctx, 1)

	assert.Equal(t, "post:42", c.store.Key(postKey(42)))
	assert.Equal(t, DefaultPostTTL, c.store.ttl)
}

// TestPostCache_Redis runs against a live server when REDIS_URL is set.
func TestPostCache_Redis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	rc, err := Connect(ctx, url)
	require.NoError(t, err)
	defer rc.Close()

	c := NewPostCache(rc, time.Minute)
	p := &post.Post{ID: 987654, Title: "cached", CreatedAt: time.Now().UTC().Truncate(time.Second)}

	c.Set(ctx, p)
	got, ok := c.Get(ctx, p.ID)
	require.True(t, ok)
	assert.Equal(t, "cached", got.Title)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	c.Invalidate(ctx, p.ID)
	_, ok = c.Get(ctx, p.ID)
	assert.False(t, ok)
}
