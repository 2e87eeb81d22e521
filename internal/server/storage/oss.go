package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fileporter/fileporter/internal/common"
)

// OSSBackend talks to a cloud object store through its S3-compatible
// endpoint using the MinIO SDK. Only the object-level capabilities are
// wired; the multipart primitives report ErrUnsupported, so chunked
// uploads require the local or minio modes.
type OSSBackend struct {
	client *minio.Client
}

// NewOSSBackend creates a client for the given endpoint with static
// credentials.
func NewOSSBackend(endpoint, accessKey, secretKey string, useSSL bool) (*OSSBackend, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}
	return &OSSBackend{client: client}, nil
}

func (b *OSSBackend) BucketExists(ctx context.Context, bucket string) (bool, error) {
	exists, err := b.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("failed to check bucket: %w", err)
	}
	return exists, nil
}

func (b *OSSBackend) CreateBucket(ctx context.Context, bucket string) error {
	exists, err := b.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := b.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func (b *OSSBackend) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := b.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object: %w", err)
	}
	return true, nil
}

func (b *OSSBackend) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (b *OSSBackend) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := b.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (b *OSSBackend) PresignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %v", ttl)
	}
	u, err := b.client.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return u.String(), nil
}

func (b *OSSBackend) InitiateMultipart(ctx context.Context, bucket, key, contentType string, totalSize int64) (string, error) {
	return "", common.ErrUnsupported
}

func (b *OSSBackend) UploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int, data []byte) (string, error) {
	return "", common.ErrUnsupported
}

func (b *OSSBackend) ListParts(ctx context.Context, bucket, key, uploadID string) ([]Part, error) {
	return nil, common.ErrUnsupported
}

func (b *OSSBackend) CompleteMultipart(ctx context.Context, bucket, key, uploadID string, parts []Part) (string, error) {
	return "", common.ErrUnsupported
}
