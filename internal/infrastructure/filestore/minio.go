package filestore

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"postboard/internal/domain/media"
	"postboard/pkg/logger"
)

// MinioConfig holds object storage settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var _ media.Store = (*Minio)(nil)

// Minio keeps files as objects named <area>/<name> in one bucket.
type Minio struct {
	client *minio.Client
	bucket string
}

// NewMinio connects to the object store and creates the bucket when missing.
func NewMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info(ctx, "bucket created", "bucket", cfg.Bucket)
	}

	return &Minio{client: client, bucket: cfg.Bucket}, nil
}

func objectKey(area media.Area, name string) string {
	return path.Join(string(area), path.Base(name))
}

// Put uploads r as area/name.
func (m *Minio) Put(ctx context.Context, area media.Area, name string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectKey(area, name), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// Exists stats area/name.
func (m *Minio) Exists(ctx context.Context, area media.Area, name string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, objectKey(area, name), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

// Move copies the object to the new area and removes the original.
func (m *Minio) Move(ctx context.Context, name string, from, to media.Area) error {
	src := minio.CopySrcOptions{Bucket: m.bucket, Object: objectKey(from, name)}
	dst := minio.CopyDestOptions{Bucket: m.bucket, Object: objectKey(to, name)}
	if _, err := m.client.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("copy object: %w", err)
	}
	if err := m.client.RemoveObject(ctx, m.bucket, src.Object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove moved object: %w", err)
	}
	return nil
}

// Remove deletes area/name.
func (m *Minio) Remove(ctx context.Context, area media.Area, name string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, objectKey(area, name), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// Open streams area/name.
func (m *Minio) Open(ctx context.Context, area media.Area, name string) (io.ReadCloser, error) {
	key := objectKey(area, name)
	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, media.ErrFileNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return obj, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
