package infra

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"mercury/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage stores uploaded documents in a MinIO bucket and hands back the
// object key plus a public download URL.
type Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewStorage connects to MinIO and ensures the bucket exists.
func NewStorage(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("storage: bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage: create bucket: %w", err)
		}
	}

	return &Storage{client: client, bucket: cfg.MinioBucket, publicURL: cfg.StoragePublicURL}, nil
}

// Upload streams a blob into the bucket under documents/YYYY/MM/DD/<rand><ext>
// and returns (objectKey, publicURL).
func (s *Storage) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, string, error) {
	objectKey := fmt.Sprintf("documents/%s/%s%s",
		time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(filename))

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("storage: put object: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectKey)
	return objectKey, url, nil
}

// PresignedURL returns a time-limited download link for a stored object.
func (s *Storage) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("storage: presign: %w", err)
	}
	return u.String(), nil
}

// Remove deletes a stored object (used when a multi-step upload fails after
// the blob was already written).
func (s *Storage) Remove(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
