// Package post_repo provides PostgreSQL implementations for posts and their images.
package post_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"postboard/internal/core/apperror"
	"postboard/internal/core/id"
	"postboard/internal/domain/post"
	"postboard/internal/domain/query"
	"postboard/internal/infrastructure/storage/postgres"
)

const (
	postsTable = "posts"
	postAlias  = "p"
)

var postColumns = postgres.ExtractDBColumns[post.Post]()

// postRow is a post joined with its author.
type postRow struct {
	post.Post
	AuthorNickname string `db:"author_nickname"`
	AuthorEmail    string `db:"author_email"`
	AuthorRole     string `db:"author_role"`
}

func (r postRow) toPost() post.Post {
	p := r.Post
	p.Author = &post.Author{
		ID:       r.AuthorID,
		Nickname: r.AuthorNickname,
		Email:    r.AuthorEmail,
		Role:     r.AuthorRole,
	}
	return p
}

var (
	_ post.Repository  = (*PostRepo)(nil)
	_ post.BulkCreator = (*PostRepo)(nil)
)

// PostRepo implements post.Repository.
type PostRepo struct {
	txm  *postgres.TxManager
	bulk *postgres.BatchInserter
}

// NewPostRepo creates a new post repository.
func NewPostRepo(txm *postgres.TxManager) *PostRepo {
	return &PostRepo{txm: txm, bulk: postgres.NewBatchInserter(txm)}
}

// baseSelect selects posts joined with their author.
func (r *PostRepo) baseSelect() squirrel.SelectBuilder {
	cols := make([]string, 0, len(postColumns)+3)
	for _, c := range postColumns {
		cols = append(cols, postAlias+"."+c)
	}
	cols = append(cols,
		"u.nickname AS author_nickname",
		"u.email AS author_email",
		"u.role AS author_role",
	)
	return postgres.Builder().
		Select(cols...).
		From(postsTable + " " + postAlias).
		Join("users u ON u.id = " + postAlias + ".author_id")
}

// listQuery builds the SELECT for a composed descriptor.
func (r *PostRepo) listQuery(d *query.Descriptor) (squirrel.SelectBuilder, error) {
	q, err := postgres.ApplyFilters(r.baseSelect(), d, post.Schema, postAlias)
	if err != nil {
		return q, err
	}
	return postgres.ApplyOrder(q, d, post.Schema, postAlias)
}

// countQuery counts rows matching the descriptor filters.
func (r *PostRepo) countQuery(d *query.Descriptor) (squirrel.SelectBuilder, error) {
	q := postgres.Builder().Select("COUNT(*)").From(postsTable + " " + postAlias)
	return postgres.ApplyFilters(q, d, post.Schema, postAlias)
}

// Find selects the posts described by d.
func (r *PostRepo) Find(ctx context.Context, d *query.Descriptor) ([]post.Post, error) {
	q, err := r.listQuery(d)
	if err != nil {
		return nil, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []postRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, postgres.MapError("list posts", "post", err)
	}

	out := make([]post.Post, len(rows))
	for i, row := range rows {
		out[i] = row.toPost()
	}
	return out, nil
}

// Count counts the posts matching d's filters.
func (r *PostRepo) Count(ctx context.Context, d *query.Descriptor) (int64, error) {
	q, err := r.countQuery(d)
	if err != nil {
		return 0, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, postgres.MapError("count posts", "post", err)
	}
	return total, nil
}

// GetByID retrieves a post by ID.
func (r *PostRepo) GetByID(ctx context.Context, postID id.ID) (*post.Post, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{postAlias + ".id": postID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row postRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("post", postID)
		}
		return nil, postgres.MapError("get post", "post", err)
	}
	p := row.toPost()
	return &p, nil
}

// Create inserts p and sets its ID and timestamps.
func (r *PostRepo) Create(ctx context.Context, p *post.Post) error {
	sql, args, err := postgres.Builder().
		Insert(postsTable).
		Columns("author_id", "title", "content").
		Values(p.AuthorID, p.Title, p.Content).
		Suffix("RETURNING id, like_count, comment_count, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).
		Scan(&p.ID, &p.LikeCount, &p.CommentCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return postgres.MapError("insert post", "post", err)
	}
	return nil
}

var copyColumns = []string{"author_id", "title", "content"}

func copyRows(posts []post.Post) [][]any {
	rows := make([][]any, len(posts))
	for i, p := range posts {
		rows[i] = []any{p.AuthorID, p.Title, p.Content}
	}
	return rows
}

// CreateMany copies posts in one COPY round trip. Must run in a transaction.
func (r *PostRepo) CreateMany(ctx context.Context, posts []post.Post) (int64, error) {
	n, err := r.bulk.CopyFromSlice(ctx, postsTable, copyColumns, copyRows(posts))
	if err != nil {
		return 0, postgres.MapError("copy posts", "post", err)
	}
	return n, nil
}

// Update saves title and content of p.
func (r *PostRepo) Update(ctx context.Context, p *post.Post) error {
	sql, args, err := postgres.Builder().
		Update(postsTable).
		Set("title", p.Title).
		Set("content", p.Content).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": p.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p.UpdatedAt, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound("post", p.ID)
		}
		return postgres.MapError("update post", "post", err)
	}
	return nil
}

// Delete removes a post; images go with it through ON DELETE CASCADE.
func (r *PostRepo) Delete(ctx context.Context, postID id.ID) error {
	sql, args, err := postgres.Builder().
		Delete(postsTable).
		Where(squirrel.Eq{"id": postID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError("delete post", "post", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("post", postID)
	}
	return nil
}
