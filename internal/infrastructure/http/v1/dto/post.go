package dto

import (
	"time"

	"postboard/internal/domain/media"
	"postboard/internal/domain/post"
	"postboard/internal/domain/query"
)

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Images  []string `json:"images"`
}

// ToInput converts to the domain input.
func (r CreatePostRequest) ToInput() post.CreateInput {
	return post.CreateInput{Title: r.Title, Content: r.Content, Images: r.Images}
}

// UpdatePostRequest is the body of PATCH /posts/:id.
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// ToInput converts to the domain input.
func (r UpdatePostRequest) ToInput() post.UpdateInput {
	return post.UpdateInput{Title: r.Title, Content: r.Content}
}

// ImageResponse is an image as clients see it.
type ImageResponse struct {
	ID    int64  `json:"id"`
	Order int    `json:"order"`
	Path  string `json:"path"`
}

// AuthorResponse is the writer of a post.
type AuthorResponse struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// PostResponse is a post as clients see it.
type PostResponse struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	LikeCount    int64           `json:"likeCount"`
	CommentCount int64           `json:"commentCount"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Author       *AuthorResponse `json:"author,omitempty"`
	Images       []ImageResponse `json:"images"`
}

// FromPost converts a domain post. Image paths become public URLs.
func FromPost(p *post.Post) PostResponse {
	resp := PostResponse{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Images:       fromImages(p.Images),
	}
	if p.Author != nil {
		resp.Author = &AuthorResponse{ID: p.Author.ID, Nickname: p.Author.Nickname, Email: p.Author.Email}
	}
	return resp
}

func fromImages(images []media.Image) []ImageResponse {
	out := make([]ImageResponse, len(images))
	for i, img := range images {
		out[i] = ImageResponse{ID: img.ID, Order: img.Order, Path: img.PublicPath()}
	}
	return out
}

// ListResponse is the envelope of a post listing.
type ListResponse struct {
	Data   []PostResponse `json:"data"`
	Cursor *query.Cursor  `json:"cursor,omitempty"`
	Count  int            `json:"count"`
	Total  *int64         `json:"total,omitempty"`
}

// FromResult converts a listing result.
func FromResult(res *query.Result[post.Post]) ListResponse {
	data := make([]PostResponse, len(res.Data))
	for i := range res.Data {
		data[i] = FromPost(&res.Data[i])
	}
	return ListResponse{Data: data, Cursor: res.Cursor, Count: res.Count, Total: res.Total}
}
