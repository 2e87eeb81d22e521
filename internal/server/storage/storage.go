// Package storage defines the object-storage capability set the upload
// service is written against, and its backend variants: a local-filesystem
// emulation, a self-hosted S3-compatible store and a cloud object store.
// The service never assumes a specific variant's error types.
package storage

import (
	"context"
	"io"
	"time"
)

// Part describes one uploaded part of a multipart session as recorded by
// the backend.
type Part struct {
	// Number is the 1-based part number supplied by the caller.
	Number int
	// ETag is the backend-issued integrity token, required verbatim at
	// completion time.
	ETag string
	// Size is the part size in bytes.
	Size int64
}

// Backend is the capability interface around one physical object-storage
// service. All operations are blocking network (or disk) calls; callers
// must not hold locks across them.
type Backend interface {
	// BucketExists reports whether the bucket exists.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// CreateBucket creates the bucket. Creating an existing bucket is a
	// no-op, not an error.
	CreateBucket(ctx context.Context, bucket string) error

	// ObjectExists reports whether an object is readable at key.
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)

	// PutObject stores size bytes from r at key. The object becomes
	// readable only after a successful return; a partial write must not
	// leave a readable object.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error

	// DeleteObject removes the object. Deleting a non-existent object
	// succeeds.
	DeleteObject(ctx context.Context, bucket, key string) error

	// PresignedURL returns a temporary access URL. Fails if ttl <= 0.
	PresignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)

	// InitiateMultipart opens a multipart session for the destination key
	// and returns the backend-issued upload id.
	InitiateMultipart(ctx context.Context, bucket, key, contentType string, totalSize int64) (string, error)

	// UploadPart stores one part. Re-uploading the same part number
	// overwrites the prior part. Returns the part's ETag.
	UploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int, data []byte) (string, error)

	// ListParts returns the recorded parts ordered by part number.
	ListParts(ctx context.Context, bucket, key, uploadID string) ([]Part, error)

	// CompleteMultipart combines the parts into the final object and
	// returns its ETag. Fails if any supplied part does not match what the
	// backend has recorded.
	CompleteMultipart(ctx context.Context, bucket, key, uploadID string, parts []Part) (string, error)
}
