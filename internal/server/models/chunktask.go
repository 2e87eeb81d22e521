package models

import "time"

// ChunkTask is the in-flight state of one multipart upload. Exactly one
// row exists per identifier while the upload is active; the row is deleted
// once the merge succeeds. Part-level progress is not stored here, it is
// derived on demand from the backend's part listing.
type ChunkTask struct {
	ID int64
	// Identifier is the content fingerprint shared with models.File,
	// scoped to this task while the upload is in flight.
	Identifier string
	// UploadID is the backend-issued multipart session token (opaque).
	UploadID string
	// FileName is the original client-supplied name.
	FileName string
	// BucketName and ObjectKey are the destination of the merged object.
	BucketName string
	ObjectKey  string
	// TotalSize is the client-declared size in bytes, a planning hint only.
	TotalSize int64
	// ChunkSize is the declared per-chunk size in bytes.
	ChunkSize int64
	// ChunkCount = ceil(TotalSize / ChunkSize).
	ChunkCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}
