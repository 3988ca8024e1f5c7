// Package media manages uploaded images: temporary uploads and the
// records that attach them to posts.
package media

import (
	"path"
	"time"

	"postboard/internal/core/id"
)

// ImageType tells what an image belongs to.
type ImageType int

const (
	ImageTypePost ImageType = iota
)

// Area is a storage location for image files.
type Area string

const (
	// AreaTemp holds uploads not yet attached to anything.
	AreaTemp Area = "temp"
	// AreaPosts holds images attached to posts.
	AreaPosts Area = "posts"
)

// PublicPrefix is the URL prefix static files are served under.
const PublicPrefix = "/public"

// Image is a stored image attached to a post.
type Image struct {
	ID        id.ID     `db:"id" json:"id"`
	PostID    id.ID     `db:"post_id" json:"-"`
	Order     int       `db:"sort_order" json:"order"`
	Type      ImageType `db:"type" json:"type"`
	Path      string    `db:"path" json:"path"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// PublicPath is the URL path the image is served from.
func (i Image) PublicPath() string {
	if i.Type == ImageTypePost {
		return path.Join(PublicPrefix, string(AreaPosts), i.Path)
	}
	return path.Join(PublicPrefix, i.Path)
}
