package memory

import (
	"context"
	"sort"
	"time"

	"postboard/internal/core/apperror"
	"postboard/internal/domain/media"
)

var _ media.Repository = (*ImageRepo)(nil)

// ImageRepo implements media.Repository.
type ImageRepo struct {
	store *Store
}

// NewImageRepo creates an image repository over store.
func NewImageRepo(store *Store) *ImageRepo {
	return &ImageRepo{store: store}
}

// Create inserts img. The post must exist.
func (r *ImageRepo) Create(ctx context.Context, img *media.Image) error {
	defer r.store.lockWrite(ctx)()

	if _, ok := r.store.posts[img.PostID]; !ok {
		return apperror.NewNotFound("post", img.PostID)
	}
	img.ID = r.store.nextID("images")
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
		img.UpdatedAt = img.CreatedAt
	}
	r.store.images[img.ID] = *img
	return nil
}

// ListByPosts returns images grouped by post, ordered by their position.
func (r *ImageRepo) ListByPosts(_ context.Context, postIDs []int64) (map[int64][]media.Image, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	want := make(map[int64]bool, len(postIDs))
	for _, pid := range postIDs {
		want[pid] = true
	}

	out := make(map[int64][]media.Image)
	for _, img := range r.store.images {
		if want[img.PostID] {
			out[img.PostID] = append(out[img.PostID], img)
		}
	}
	for pid := range out {
		imgs := out[pid]
		sort.Slice(imgs, func(i, j int) bool {
			if imgs[i].Order != imgs[j].Order {
				return imgs[i].Order < imgs[j].Order
			}
			return imgs[i].ID < imgs[j].ID
		})
	}
	return out, nil
}
