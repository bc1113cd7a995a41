package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pagesmith-backend/internal/config"
)

// MinIOStorage is the static artifact sink for published pages.
type MinIOStorage struct {
	client       *minio.Client
	bucket       string
	cacheControl string
}

// NewMinIOStorage connects and creates the bucket when missing.
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStorage{
		client:       client,
		bucket:       cfg.Bucket,
		cacheControl: cfg.CacheControl,
	}, nil
}

// Upload overwrites key with data.
// key: object path in the bucket, e.g. us/wa/seattle/food-dining/near-me/index.html
func (s *MinIOStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  contentType,
			CacheControl: s.cacheControl,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to upload %s to minio: %w", key, err)
	}
	return nil
}

func (s *MinIOStorage) HealthCheck(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("minio bucket check failed: %w", err)
	}
	return nil
}
