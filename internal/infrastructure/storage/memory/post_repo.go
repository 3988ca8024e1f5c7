package memory

import (
	"context"
	"time"

	"postboard/internal/core/apperror"
	"postboard/internal/core/id"
	"postboard/internal/domain/post"
	"postboard/internal/domain/query"
)

var _ post.Repository = (*PostRepo)(nil)

// PostRepo implements post.Repository.
type PostRepo struct {
	store *Store
	now   func() time.Time
}

// NewPostRepo creates a post repository over store.
func NewPostRepo(store *Store) *PostRepo {
	return &PostRepo{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (r *PostRepo) all() []post.Post {
	out := make([]post.Post, 0, len(r.store.posts))
	for _, p := range r.store.posts {
		out = append(out, p)
	}
	return out
}

func (r *PostRepo) withAuthor(p post.Post) post.Post {
	if u, ok := r.store.users[p.AuthorID]; ok {
		p.Author = &post.Author{ID: u.ID, Nickname: u.Nickname, Email: u.Email, Role: string(u.Role)}
	}
	return p
}

func postValue(p post.Post, field string) any {
	return p.Value(field)
}

// Find selects the posts described by d.
func (r *PostRepo) Find(_ context.Context, d *query.Descriptor) ([]post.Post, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	items, _, err := query.Select(r.all(), d, post.Schema, postValue)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = r.withAuthor(items[i])
	}
	return items, nil
}

// Count counts the posts matching d's filters.
func (r *PostRepo) Count(_ context.Context, d *query.Descriptor) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, total, err := query.Select(r.all(), d, post.Schema, postValue)
	return total, err
}

// GetByID retrieves a post by ID.
func (r *PostRepo) GetByID(_ context.Context, postID id.ID) (*post.Post, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.posts[postID]
	if !ok {
		return nil, apperror.NewNotFound("post", postID)
	}
	p = r.withAuthor(p)
	return &p, nil
}

// Create inserts p. The author must exist.
func (r *PostRepo) Create(ctx context.Context, p *post.Post) error {
	defer r.store.lockWrite(ctx)()

	if _, ok := r.store.users[p.AuthorID]; !ok {
		return apperror.NewNotFound("user", p.AuthorID)
	}

	now := r.now()
	p.ID = r.store.nextID("posts")
	p.CreatedAt, p.UpdatedAt = now, now
	stored := *p
	stored.Author, stored.Images = nil, nil
	r.store.posts[p.ID] = stored
	return nil
}

// Update saves title and content.
func (r *PostRepo) Update(ctx context.Context, p *post.Post) error {
	defer r.store.lockWrite(ctx)()

	stored, ok := r.store.posts[p.ID]
	if !ok {
		return apperror.NewNotFound("post", p.ID)
	}
	stored.Title, stored.Content = p.Title, p.Content
	stored.UpdatedAt = r.now()
	r.store.posts[p.ID] = stored
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes a post and its images.
func (r *PostRepo) Delete(ctx context.Context, postID id.ID) error {
	defer r.store.lockWrite(ctx)()

	if _, ok := r.store.posts[postID]; !ok {
		return apperror.NewNotFound("post", postID)
	}
	delete(r.store.posts, postID)
	for imgID, img := range r.store.images {
		if img.PostID == postID {
			delete(r.store.images, imgID)
		}
	}
	return nil
}
