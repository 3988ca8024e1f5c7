package post_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"postboard/internal/domain/media"
	"postboard/internal/infrastructure/storage/postgres"
)

const imagesTable = "images"

var imageColumns = postgres.ExtractDBColumns[media.Image]()

var _ media.Repository = (*ImageRepo)(nil)

// ImageRepo implements media.Repository.
type ImageRepo struct {
	txm *postgres.TxManager
}

// NewImageRepo creates a new image repository.
func NewImageRepo(txm *postgres.TxManager) *ImageRepo {
	return &ImageRepo{txm: txm}
}

// Create inserts img and sets its ID.
func (r *ImageRepo) Create(ctx context.Context, img *media.Image) error {
	sql, args, err := postgres.Builder().
		Insert(imagesTable).
		SetMap(postgres.StructToMap(img, "id")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&img.ID); err != nil {
		return postgres.MapError("insert image", "image", err)
	}
	return nil
}

// ListByPosts returns images of postIDs grouped by post and ordered by position.
func (r *ImageRepo) ListByPosts(ctx context.Context, postIDs []int64) (map[int64][]media.Image, error) {
	sql, args, err := r.listQuery(postIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var images []media.Image
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &images, sql, args...); err != nil {
		return nil, postgres.MapError("list images", "image", err)
	}

	out := make(map[int64][]media.Image, len(postIDs))
	for _, img := range images {
		out[img.PostID] = append(out[img.PostID], img)
	}
	return out, nil
}

func (r *ImageRepo) listQuery(postIDs []int64) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(imageColumns...).
		From(imagesTable).
		Where(squirrel.Eq{"post_id": postIDs}).
		OrderBy("post_id", "sort_order", "id")
}
