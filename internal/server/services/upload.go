// Package services implements the upload coordinator: single-call small
// file uploads, the chunked upload lifecycle (initiate, part upload,
// progress, merge), content dedup and file listing.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fileporter/fileporter/internal/common"
	"github.com/fileporter/fileporter/internal/logging"
	"github.com/fileporter/fileporter/internal/server/config"
	"github.com/fileporter/fileporter/internal/server/models"
	"github.com/fileporter/fileporter/internal/server/repositories/chunks"
	"github.com/fileporter/fileporter/internal/server/repositories/files"
	"github.com/fileporter/fileporter/internal/server/storage"
)

// ChunkTaskInfo is the task descriptor returned by InitiateChunked and
// Progress.
type ChunkTaskInfo struct {
	Identifier string         `json:"identifier"`
	UploadID   string         `json:"uploadId"`
	FileName   string         `json:"fileName"`
	BucketName string         `json:"bucketName"`
	ObjectKey  string         `json:"objectKey"`
	TotalSize  int64          `json:"totalSize"`
	ChunkSize  int64          `json:"chunkSize"`
	ChunkCount int            `json:"chunkCount"`
	Finished   bool           `json:"finished"`
	// Parts is the already-uploaded part list. A finished response with a
	// nil part list means the destination object already exists: the
	// upload was merged, stop polling.
	Parts []storage.Part `json:"existPartList"`
}

// FileInfo is one row of a file listing, with a freshly generated
// temporary access URL.
type FileInfo struct {
	Identifier  string    `json:"identifier"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	ContentType string    `json:"contentType"`
	URL         string    `json:"url"`
	UploadTime  time.Time `json:"uploadTime"`
}

// UploadService coordinates uploads between the metadata repositories and
// the configured storage backend. It holds no mutable state of its own;
// all cross-call state lives in the repositories and the backend.
type UploadService struct {
	files   files.Repository
	chunks  chunks.Repository
	backend storage.Backend
	config  *config.Config
	logger  logging.Logger
}

func NewUploadService(files files.Repository, chunks chunks.Repository, backend storage.Backend,
	config *config.Config, logger logging.Logger) *UploadService {
	return &UploadService{
		files:   files,
		chunks:  chunks,
		backend: backend,
		config:  config,
		logger:  logger,
	}
}

// randomObjectKey builds a fresh object key under the configured prefix.
// The key is never derived from the client-supplied file name, only its
// extension is kept.
func (s *UploadService) randomObjectKey(fileName string) string {
	name := strings.ReplaceAll(uuid.New().String(), "-", "")
	if ext := path.Ext(fileName); ext != "" {
		name += ext
	}
	if s.config.KeyPrefix == "" {
		return name
	}
	return s.config.KeyPrefix + "/" + name
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// fileSuffix returns the extension without the leading dot.
func fileSuffix(fileName string) string {
	return strings.TrimPrefix(path.Ext(fileName), ".")
}

// UploadSmall stores a file in a single call and records it, returning a
// temporary access URL. It does not check for duplicates itself; callers
// decide whether to call SecondUpload first to skip the transfer.
func (s *UploadService) UploadSmall(ctx context.Context, fileName, identifier string, size int64, r io.Reader) (string, error) {
	key := s.randomObjectKey(fileName)

	err := s.backend.PutObject(ctx, s.config.Bucket, key, r, size, contentTypeFor(key))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrBackendFailure, err)
	}

	file := &models.File{
		FileName:   fileName,
		FileSuffix: fileSuffix(fileName),
		FileSize:   size,
		ObjectKey:  key,
		Identifier: identifier,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return "", fmt.Errorf("failed to save file record: %w", err)
	}
	s.logger.Info(ctx, "file uploaded", "identifier", identifier, "key", key, "size", size)

	return s.backend.PresignedURL(ctx, s.config.Bucket, key, s.config.PresignTTL)
}

// SecondUpload reports whether content with this identifier is already
// stored, letting the caller skip the transfer entirely. The check is
// optimistic: it does not reserve the identifier.
func (s *UploadService) SecondUpload(ctx context.Context, identifier string) (bool, error) {
	if identifier == "" {
		return false, nil
	}
	_, err := s.files.GetByIdentifier(ctx, identifier)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the stored file for the identifier: backend object first,
// then the metadata row. An unknown identifier is a no-op. If the backend
// delete fails the metadata row is kept, so the object is never orphaned
// without a record.
func (s *UploadService) Delete(ctx context.Context, identifier string) error {
	file, err := s.files.GetByIdentifier(ctx, identifier)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.backend.DeleteObject(ctx, s.config.Bucket, file.ObjectKey); err != nil {
		return fmt.Errorf("%w: %v", common.ErrBackendFailure, err)
	}
	if err := s.files.Delete(ctx, file.ID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	s.logger.Info(ctx, "file deleted", "identifier", identifier, "key", file.ObjectKey)
	return nil
}

// InitiateChunked opens a multipart upload task for the identifier.
// Returns common.ErrTaskConflict if an active task already exists; the
// uniqueness constraint on the task table makes this atomic, two
// concurrent initiations cannot both win.
func (s *UploadService) InitiateChunked(ctx context.Context, fileName, identifier string, totalSize, chunkSize int64) (*ChunkTaskInfo, error) {
	if totalSize <= 0 || chunkSize <= 0 {
		return nil, fmt.Errorf("totalSize and chunkSize must be positive")
	}

	key := s.randomObjectKey(fileName)
	chunkCount := int((totalSize + chunkSize - 1) / chunkSize)

	uploadID, err := s.backend.InitiateMultipart(ctx, s.config.Bucket, key, contentTypeFor(key), totalSize)
	if err != nil {
		if errors.Is(err, common.ErrUnsupported) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrBackendFailure, err)
	}

	task := &models.ChunkTask{
		Identifier: identifier,
		UploadID:   uploadID,
		FileName:   fileName,
		BucketName: s.config.Bucket,
		ObjectKey:  key,
		TotalSize:  totalSize,
		ChunkSize:  chunkSize,
		ChunkCount: chunkCount,
	}
	if err := s.chunks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "chunk upload initiated",
		"identifier", identifier, "uploadId", uploadID, "chunkCount", chunkCount)

	return &ChunkTaskInfo{
		Identifier: task.Identifier,
		UploadID:   task.UploadID,
		FileName:   task.FileName,
		BucketName: task.BucketName,
		ObjectKey:  task.ObjectKey,
		TotalSize:  task.TotalSize,
		ChunkSize:  task.ChunkSize,
		ChunkCount: task.ChunkCount,
		Finished:   false,
		Parts:      []storage.Part{},
	}, nil
}

// UploadPart uploads one part against the active task for the identifier.
// The part number is not validated against the planned chunk count; an
// out-of-range part is accepted by the backend and simply makes the merge
// count check fail later. The task row is not touched; part-level
// progress lives in the backend, not here.
func (s *UploadService) UploadPart(ctx context.Context, identifier string, partNumber int, data []byte) error {
	task, err := s.chunks.GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}

	etag, err := s.backend.UploadPart(ctx, task.BucketName, task.ObjectKey, task.UploadID, partNumber, data)
	if err != nil {
		if errors.Is(err, common.ErrUnsupported) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrBackendFailure, err)
	}
	s.logger.Info(ctx, "part uploaded",
		"identifier", identifier, "partNumber", partNumber, "etag", etag)
	return nil
}

// Progress returns the task descriptor with the uploaded-part list. If
// the destination object already exists (a merge raced ahead or was
// retried), Finished is true and the part list is nil. Callers must stop
// polling and call merge.
func (s *UploadService) Progress(ctx context.Context, identifier string) (*ChunkTaskInfo, error) {
	task, err := s.chunks.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	info := &ChunkTaskInfo{
		Identifier: task.Identifier,
		UploadID:   task.UploadID,
		FileName:   task.FileName,
		BucketName: task.BucketName,
		ObjectKey:  task.ObjectKey,
		TotalSize:  task.TotalSize,
		ChunkSize:  task.ChunkSize,
		ChunkCount: task.ChunkCount,
	}

	exists, err := s.backend.ObjectExists(ctx, task.BucketName, task.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBackendFailure, err)
	}
	if exists {
		info.Finished = true
		return info, nil
	}

	parts, err := s.backend.ListParts(ctx, task.BucketName, task.ObjectKey, task.UploadID)
	if err != nil {
		if errors.Is(err, common.ErrUnsupported) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrBackendFailure, err)
	}
	info.Parts = parts
	info.Finished = len(parts) == task.ChunkCount
	return info, nil
}

// Merge verifies all parts are present and completes the multipart
// upload. The size of record is the sum of part sizes as reported by the
// backend; the declared total is only a planning hint. On success the
// completed file is recorded and the task deleted; on backend failure the
// task stays active so the caller can retry without re-uploading parts.
func (s *UploadService) Merge(ctx context.Context, identifier string) (string, error) {
	task, err := s.chunks.GetByIdentifier(ctx, identifier)
	if err != nil {
		return "", err
	}

	parts, err := s.backend.ListParts(ctx, task.BucketName, task.ObjectKey, task.UploadID)
	if err != nil {
		if errors.Is(err, common.ErrUnsupported) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", common.ErrBackendFailure, err)
	}
	if len(parts) != task.ChunkCount {
		return "", fmt.Errorf("%w: have %d of %d parts", common.ErrChunksIncomplete, len(parts), task.ChunkCount)
	}

	var fileSize int64
	for _, p := range parts {
		fileSize += p.Size
	}
	if fileSize != task.TotalSize {
		s.logger.Warn(ctx, "merged size differs from declared total",
			"identifier", identifier, "declared", task.TotalSize, "actual", fileSize)
	}

	// the backend contract requires ascending, gapless part numbers
	sort.Slice(parts, func(i, j int) bool { return parts[i].Number < parts[j].Number })

	if _, err := s.backend.CompleteMultipart(ctx, task.BucketName, task.ObjectKey, task.UploadID, parts); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrBackendFailure, err)
	}

	file := &models.File{
		FileName:   task.FileName,
		FileSuffix: fileSuffix(task.FileName),
		FileSize:   fileSize,
		ObjectKey:  task.ObjectKey,
		Identifier: identifier,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return "", fmt.Errorf("failed to save file record: %w", err)
	}
	if err := s.chunks.Delete(ctx, task.ID); err != nil {
		return "", fmt.Errorf("failed to delete task record: %w", err)
	}
	s.logger.Info(ctx, "chunk upload merged",
		"identifier", identifier, "key", task.ObjectKey, "size", fileSize)

	return s.backend.PresignedURL(ctx, task.BucketName, task.ObjectKey, s.config.PresignTTL)
}

// List returns stored files whose name contains nameFilter (case-sensitive
// substring; empty matches all), newest first, with fresh temporary access
// URLs.
func (s *UploadService) List(ctx context.Context, nameFilter string, page, pageSize int) ([]*FileInfo, error) {
	rows, err := s.files.List(ctx, nameFilter, page, pageSize)
	if err != nil {
		return nil, err
	}

	result := make([]*FileInfo, 0, len(rows))
	for _, f := range rows {
		url, err := s.backend.PresignedURL(ctx, s.config.Bucket, f.ObjectKey, s.config.PresignTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrBackendFailure, err)
		}
		result = append(result, &FileInfo{
			Identifier:  f.Identifier,
			FileName:    f.FileName,
			FileSize:    f.FileSize,
			ContentType: contentTypeFor(f.ObjectKey),
			URL:         url,
			UploadTime:  f.CreatedAt,
		})
	}
	return result, nil
}
