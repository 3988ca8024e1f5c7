package post_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/core/apperror"
	"postboard/internal/core/id"
	"postboard/internal/domain/auth"
	"postboard/internal/domain/media"
	"postboard/internal/domain/post"
	"postboard/internal/domain/query"
	"postboard/internal/infrastructure/storage/memory"
)

type mapCache struct {
	mu    sync.Mutex
	items map[id.ID]post.Post
	hits  int
}

func (c *mapCache) Get(_ context.Context, postID id.ID) (*post.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[postID]
	if ok {
		c.hits++
	}
	return &p, ok
}

func (c *mapCache) Set(_ context.Context, p *post.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.ID] = *p
}

func (c *mapCache) Invalidate(_ context.Context, postID id.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, postID)
}

type fixture struct {
	svc    *post.Service
	media  *media.Service
	files  *memory.Files
	cache  *mapCache
	author *auth.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	author := auth.NewUser("alice", "alice@example.com", "hash")
	require.NoError(t, memory.NewUserRepo(store).Create(context.Background(), author))

	files := memory.NewFiles()
	mediaSvc := media.NewService(files, memory.NewImageRepo(store))
	cache := &mapCache{items: map[id.ID]post.Post{}}

	svc := post.NewService(post.Config{
		Posts:     memory.NewPostRepo(store),
		Media:     mediaSvc,
		TxManager: memory.NewTxManager(store),
		BaseURL:   "http://localhost:3000/posts",
		Cache:     cache,
	})
	return &fixture{svc: svc, media: mediaSvc, files: files, cache: cache, author: author}
}

func (f *fixture) upload(t *testing.T, name string) string {
	t.Helper()
	stored, err := f.media.Upload(context.Background(), name, 1, strings.NewReader("x"))
	require.NoError(t, err)
	return stored
}

func TestCreate_WithImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := f.upload(t, "a.png"), f.upload(t, "b.jpg")

	p, err := f.svc.Create(ctx, f.author.ID, post.CreateInput{Title: "hello", Content: "world", Images: []string{a, b}})
	require.NoError(t, err)

	assert.Equal(t, "hello", p.Title)
	require.NotNil(t, p.Author)
	assert.Equal(t, "alice", p.Author.Nickname)
	require.Len(t, p.Images, 2)
	assert.Equal(t, a, p.Images[0].Path)
	assert.Equal(t, 1, p.Images[1].Order)
}

func TestCreate_MissingImageRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.upload(t, "a.png")

	_, err := f.svc.Create(ctx, f.author.ID, post.CreateInput{Title: "t", Content: "c", Images: []string{a, "gone.png"}})
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetHTTPStatus(err))

	res, err := f.svc.Paginate(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Data)

	inTemp, _ := f.files.Exists(ctx, media.AreaTemp, a)
	assert.True(t, inTemp, "attached file is moved back")
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.author.ID, post.CreateInput{Content: "c"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestGetByID_UsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.author.ID, post.CreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)

	title := "changed"
	updated, err := f.svc.Update(ctx, created.ID, post.UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Title)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	_, err = f.svc.GetByID(ctx, created.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGenerateRandomAndPaginate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.GenerateRandom(ctx, f.author.ID))

	res, err := f.svc.Paginate(ctx, query.MustParse("order__createdAt=DESC&take=10"))
	require.NoError(t, err)
	assert.Equal(t, 10, res.Count)
	require.NotNil(t, res.Cursor.After)
	assert.Equal(t, int64(91), *res.Cursor.After)
	require.NotNil(t, res.Cursor.Next)
	assert.Contains(t, *res.Cursor.Next, "where__id__less_than=91")
	assert.NotNil(t, res.Data[0].Images)

	page, err := f.svc.Paginate(ctx, query.MustParse("page=10&take=10"))
	require.NoError(t, err)
	require.NotNil(t, page.Total)
	assert.Equal(t, int64(post.RandomBatchSize), *page.Total)
	assert.Equal(t, int64(91), page.Data[0].ID)
}

func TestEnsureCanModify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.author.ID, post.CreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	assert.NoError(t, f.svc.EnsureCanModify(ctx, p.ID, f.author.ID, false))
	assert.NoError(t, f.svc.EnsureCanModify(ctx, p.ID, 999, true))

	err = f.svc.EnsureCanModify(ctx, p.ID, 999, false)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	err = f.svc.EnsureCanModify(ctx, 12345, f.author.ID, true)
	assert.True(t, apperror.IsNotFound(err))
}
