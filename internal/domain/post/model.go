// Package post implements blog posts: listing through the query composer,
// creation with attached images, updates and deletion.
package post

import (
	"time"

	"postboard/internal/core/apperror"
	"postboard/internal/core/id"
	"postboard/internal/domain/media"
	"postboard/internal/domain/query"
)

// Author is the public view of a post's writer.
type Author struct {
	ID       id.ID  `db:"id" json:"id"`
	Nickname string `db:"nickname" json:"nickname"`
	Email    string `db:"email" json:"email"`
	Role     string `db:"role" json:"role"`
}

// Post is a blog entry.
type Post struct {
	ID           id.ID         `db:"id" json:"id"`
	AuthorID     id.ID         `db:"author_id" json:"-"`
	Title        string        `db:"title" json:"title"`
	Content      string        `db:"content" json:"content"`
	LikeCount    int64         `db:"like_count" json:"likeCount"`
	CommentCount int64         `db:"comment_count" json:"commentCount"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updatedAt"`
	Author       *Author       `db:"-" json:"author,omitempty"`
	Images       []media.Image `db:"-" json:"images"`
}

// GetID implements query.Identifiable.
func (p Post) GetID() int64 { return p.ID }

// Schema lists the attributes list options may filter and sort on.
var Schema = query.NewSchema(
	query.Field{Name: "id", Column: "id", Kind: query.KindInt},
	query.Field{Name: "title", Column: "title", Kind: query.KindString},
	query.Field{Name: "content", Column: "content", Kind: query.KindString},
	query.Field{Name: "likeCount", Column: "like_count", Kind: query.KindInt},
	query.Field{Name: "commentCount", Column: "comment_count", Kind: query.KindInt},
	query.Field{Name: "authorId", Column: "author_id", Kind: query.KindInt},
	query.Field{Name: "createdAt", Column: "created_at", Kind: query.KindTime},
	query.Field{Name: "updatedAt", Column: "updated_at", Kind: query.KindTime},
)

// Value returns the attribute named field, typed as Schema declares it.
func (p Post) Value(field string) any {
	switch field {
	case "id":
		return p.ID
	case "title":
		return p.Title
	case "content":
		return p.Content
	case "likeCount":
		return p.LikeCount
	case "commentCount":
		return p.CommentCount
	case "authorId":
		return p.AuthorID
	case "createdAt":
		return p.CreatedAt
	case "updatedAt":
		return p.UpdatedAt
	}
	return nil
}

// CreateInput is the payload of a new post.
type CreateInput struct {
	Title   string
	Content string
	// Images are names of previously uploaded temp files, in display order.
	Images []string
}

// Validate checks required fields.
func (in CreateInput) Validate() error {
	if in.Title == "" {
		return apperror.NewValidation("title is required").WithDetail("field", "title")
	}
	if in.Content == "" {
		return apperror.NewValidation("content is required").WithDetail("field", "content")
	}
	return nil
}

// UpdateInput carries optional replacements; nil or empty fields are left unchanged.
type UpdateInput struct {
	Title   *string
	Content *string
}

// Apply copies the set fields onto p and reports whether anything changed.
func (in UpdateInput) Apply(p *Post) bool {
	changed := false
	if in.Title != nil && *in.Title != "" && *in.Title != p.Title {
		p.Title = *in.Title
		changed = true
	}
	if in.Content != nil && *in.Content != "" && *in.Content != p.Content {
		p.Content = *in.Content
		changed = true
	}
	return changed
}
