package post

import (
	"context"
	"fmt"

	"postboard/internal/core/apperror"
	"postboard/internal/core/id"
	"postboard/internal/core/tx"
	"postboard/internal/domain/media"
	"postboard/internal/domain/query"
	"postboard/pkg/logger"
)

// RandomBatchSize is how many posts GenerateRandom creates.
const RandomBatchSize = 100

// Service implements post use cases.
type Service struct {
	posts     Repository
	media     *media.Service
	txManager tx.Manager
	paginator *query.Paginator[Post]
	cache     Cache
}

// Config wires a Service.
type Config struct {
	Posts     Repository
	Media     *media.Service
	TxManager tx.Manager
	Composer  *query.Composer
	// BaseURL is the absolute URL of the listing endpoint, e.g. http://localhost:3000/posts.
	BaseURL string
	Cache   Cache
}

// NewService creates a post service.
func NewService(cfg Config) *Service {
	s := &Service{
		posts:     cfg.Posts,
		media:     cfg.Media,
		txManager: cfg.TxManager,
		cache:     cfg.Cache,
	}
	s.paginator = query.NewPaginator[Post](cfg.Composer, &withImages{posts: cfg.Posts, media: cfg.Media}, cfg.BaseURL)
	return s
}

// Paginate lists posts according to opts.
func (s *Service) Paginate(ctx context.Context, opts query.Options) (*query.Result[Post], error) {
	return s.paginator.Paginate(ctx, opts)
}

// GetByID returns a post with author and images.
func (s *Service) GetByID(ctx context.Context, postID id.ID) (*Post, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, postID); ok {
			return p, nil
		}
	}

	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	one := []Post{*p}
	if err := attachImages(ctx, s.media, one); err != nil {
		return nil, err
	}
	p = &one[0]

	if s.cache != nil {
		s.cache.Set(ctx, p)
	}
	return p, nil
}

// Create stores a post and attaches its images in one transaction.
// Images already moved are moved back when the transaction fails.
func (s *Service) Create(ctx context.Context, authorID id.ID, in CreateInput) (*Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p := &Post{AuthorID: authorID, Title: in.Title, Content: in.Content}
	var attached []string

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		attached = attached[:0]
		if err := s.posts.Create(ctx, p); err != nil {
			return err
		}
		for i, name := range in.Images {
			if _, err := s.media.AttachToPost(ctx, p.ID, i, name); err != nil {
				return err
			}
			attached = append(attached, name)
		}
		return nil
	})
	if err != nil {
		for _, name := range attached {
			s.media.Detach(ctx, name)
		}
		if _, ok := apperror.AsAppError(err); ok {
			return nil, err
		}
		return nil, apperror.NewBadRequest(apperror.CodeInvalidInput, "failed to create post").WithCause(err)
	}

	logger.Info(ctx, "post created", "post_id", p.ID, "author_id", authorID, "images", len(in.Images))
	return s.GetByID(ctx, p.ID)
}

// Update changes title and/or content.
func (s *Service) Update(ctx context.Context, postID id.ID, in UpdateInput) (*Post, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if !in.Apply(p) {
			return nil
		}
		return s.posts.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, postID)
	}
	return s.GetByID(ctx, postID)
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, postID id.ID) error {
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, postID)
	}
	logger.Info(ctx, "post deleted", "post_id", postID)
	return nil
}

// GenerateRandom creates RandomBatchSize sample posts for authorID.
func (s *Service) GenerateRandom(ctx context.Context, authorID id.ID) error {
	posts := make([]Post, RandomBatchSize)
	for i := range posts {
		posts[i] = Post{
			AuthorID: authorID,
			Title:    fmt.Sprintf("generated title %d", i),
			Content:  fmt.Sprintf("generated content %d", i),
		}
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if bulk, ok := s.posts.(BulkCreator); ok {
			n, err := bulk.CreateMany(ctx, posts)
			if err != nil {
				return err
			}
			logger.Info(ctx, "random posts generated", "author_id", authorID, "count", n)
			return nil
		}
		for i := range posts {
			if err := s.posts.Create(ctx, &posts[i]); err != nil {
				return err
			}
		}
		logger.Info(ctx, "random posts generated", "author_id", authorID, "count", len(posts))
		return nil
	})
}

// attachImages fills Images of every post in place.
func attachImages(ctx context.Context, m *media.Service, posts []Post) error {
	if m == nil || len(posts) == 0 {
		return nil
	}
	ids := make([]id.ID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	byPost, err := m.ForPosts(ctx, ids)
	if err != nil {
		return err
	}
	for i := range posts {
		imgs := byPost[posts[i].ID]
		if imgs == nil {
			imgs = []media.Image{}
		}
		posts[i].Images = imgs
	}
	return nil
}

// withImages decorates a Repository so listed posts carry their images.
type withImages struct {
	posts Repository
	media *media.Service
}

func (w *withImages) Find(ctx context.Context, d *query.Descriptor) ([]Post, error) {
	items, err := w.posts.Find(ctx, d)
	if err != nil {
		return nil, err
	}
	if err := attachImages(ctx, w.media, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (w *withImages) Count(ctx context.Context, d *query.Descriptor) (int64, error) {
	return w.posts.Count(ctx, d)
}

// EnsureCanModify allows the post's author and admins to change it.
func (s *Service) EnsureCanModify(ctx context.Context, postID, userID id.ID, isAdmin bool) error {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if isAdmin || p.AuthorID == userID {
		return nil
	}
	return apperror.NewForbidden("only the author can modify this post").WithDetail("post_id", postID)
}
