package docstore

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"certiva/internal/platform/config"
	"certiva/pkg/apperrors"
)

const presignedURLTTL = 15 * time.Minute

// MinioStore is the production Uploader backed by MinIO or any
// S3-compatible endpoint.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the endpoint and ensures the bucket exists.
func NewMinioStore(cfg config.DocStoreConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &MinioStore{client: client, bucket: cfg.Bucket}
	if err := s.ensureBucket(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, ownerID uuid.UUID, doc Document) (string, error) {
	ext, err := doc.validate()
	if err != nil {
		return "", err
	}

	key := objectKey(ownerID, ext)
	_, err = s.client.PutObject(ctx, s.bucket, key, doc.Content, doc.Size, minio.PutObjectOptions{
		ContentType: doc.ContentType,
		UserMetadata: map[string]string{
			"Owner-Id": ownerID.String(),
		},
	})
	if err != nil {
		return "", apperrors.Wrap(fmt.Errorf("put object: %w", err), apperrors.CodeStorage, "upload document")
	}
	return key, nil
}

func (s *MinioStore) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, presignedURLTTL, url.Values{})
	if err != nil {
		return "", apperrors.Wrap(fmt.Errorf("presign object: %w", err), apperrors.CodeStorage, "presign document")
	}
	return u.String(), nil
}
