package media

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"postboard/internal/core/apperror"
	"postboard/internal/core/id"
	"postboard/pkg/logger"
)

// MaxUploadSize is the largest accepted image in bytes.
const MaxUploadSize int64 = 10_000_000

var allowedExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// Service handles uploads and attaches them to posts.
type Service struct {
	store  Store
	images Repository
}

// NewService creates a media service.
func NewService(store Store, images Repository) *Service {
	return &Service{store: store, images: images}
}

// Upload stores an image in the temp area under a fresh name and returns it.
func (s *Service) Upload(ctx context.Context, originalName string, size int64, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", apperror.NewValidation("only png, jpg, jpeg and gif images are allowed").
			WithDetail("extension", ext)
	}
	if size > MaxUploadSize {
		return "", apperror.NewTooLarge(MaxUploadSize)
	}

	name := uuid.NewString() + ext
	if err := s.store.Put(ctx, AreaTemp, name, r, size, contentType); err != nil {
		return "", apperror.NewStorage("put", err)
	}

	logger.Debug(ctx, "image uploaded", "file", name, "size", size)
	return name, nil
}

// AttachToPost records a temp upload as the order-th image of postID and
// moves the file into the posts area.
func (s *Service) AttachToPost(ctx context.Context, postID id.ID, order int, name string) (*Image, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, apperror.NewValidation("invalid image name").WithDetail("image", name)
	}

	exists, err := s.store.Exists(ctx, AreaTemp, name)
	if err != nil {
		return nil, apperror.NewStorage("exists", err)
	}
	if !exists {
		return nil, apperror.NewValidation("file does not exist").WithDetail("image", name)
	}

	now := time.Now().UTC()
	img := &Image{
		PostID:    postID,
		Order:     order,
		Type:      ImageTypePost,
		Path:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.images.Create(ctx, img); err != nil {
		return nil, err
	}

	if err := s.store.Move(ctx, name, AreaTemp, AreaPosts); err != nil {
		return nil, apperror.NewStorage("move", err)
	}
	return img, nil
}

// Detach moves a post image back to the temp area. Used to undo AttachToPost
// when the surrounding transaction fails.
func (s *Service) Detach(ctx context.Context, name string) {
	if err := s.store.Move(ctx, name, AreaPosts, AreaTemp); err != nil {
		logger.Warn(ctx, "failed to move image back to temp", "file", name, "error", err)
	}
}

// ForPosts loads the images of postIDs.
func (s *Service) ForPosts(ctx context.Context, postIDs []id.ID) (map[id.ID][]Image, error) {
	if len(postIDs) == 0 {
		return map[id.ID][]Image{}, nil
	}
	return s.images.ListByPosts(ctx, postIDs)
}

// Open streams a stored image and reports its content type.
func (s *Service) Open(ctx context.Context, area Area, name string) (io.ReadCloser, string, error) {
	contentType, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]
	if !ok || name != filepath.Base(name) || (area != AreaTemp && area != AreaPosts) {
		return nil, "", apperror.NewNotFound("file", name)
	}

	rc, err := s.store.Open(ctx, area, name)
	if errors.Is(err, ErrFileNotFound) {
		return nil, "", apperror.NewNotFound("file", name)
	}
	if err != nil {
		return nil, "", apperror.NewStorage("open", err)
	}
	return rc, contentType, nil
}
