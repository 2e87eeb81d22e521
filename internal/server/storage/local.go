package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fileporter/fileporter/internal/common"
)

// multipartDir is where in-flight part files are staged, outside any
// bucket so partial uploads are never readable as objects.
const multipartDir = ".multipart"

// LocalBackend emulates object storage on the local filesystem. Buckets
// are directories under root; puts go through a temp file and rename so an
// object is only visible once fully written. Multipart sessions stage
// their parts under root/.multipart/<uploadID>.
type LocalBackend struct {
	root    string
	baseURL string
}

// NewLocalBackend creates the backend rooted at root. baseURL is the
// public URL prefix returned instead of presigned URLs (a plain directory
// cannot sign anything).
func NewLocalBackend(root, baseURL string) (*LocalBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalBackend{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (b *LocalBackend) bucketPath(bucket string) string {
	return filepath.Join(b.root, bucket)
}

func (b *LocalBackend) objectPath(bucket, key string) string {
	return filepath.Join(b.root, bucket, filepath.FromSlash(key))
}

func (b *LocalBackend) uploadPath(uploadID string) string {
	return filepath.Join(b.root, multipartDir, uploadID)
}

func (b *LocalBackend) BucketExists(ctx context.Context, bucket string) (bool, error) {
	info, err := os.Stat(b.bucketPath(bucket))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (b *LocalBackend) CreateBucket(ctx context.Context, bucket string) error {
	return os.MkdirAll(b.bucketPath(bucket), 0o755)
}

func (b *LocalBackend) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	info, err := os.Stat(b.objectPath(bucket, key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// writeAtomic writes r to path via a temp file in the same directory and
// renames it into place, so readers never observe a partial object.
func (b *LocalBackend) writeAtomic(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (b *LocalBackend) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	if err := b.writeAtomic(b.objectPath(bucket, key), r); err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}
	return nil
}

func (b *LocalBackend) DeleteObject(ctx context.Context, bucket, key string) error {
	err := os.Remove(b.objectPath(bucket, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (b *LocalBackend) PresignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %v", ttl)
	}
	return b.baseURL + "/" + bucket + "/" + key, nil
}

func (b *LocalBackend) InitiateMultipart(ctx context.Context, bucket, key, contentType string, totalSize int64) (string, error) {
	uploadID := strings.ReplaceAll(uuid.New().String(), "-", "")
	if err := os.MkdirAll(b.uploadPath(uploadID), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload staging dir: %w", err)
	}
	return uploadID, nil
}

func partFileName(partNumber int) string {
	return fmt.Sprintf("part.%d", partNumber)
}

func (b *LocalBackend) UploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int, data []byte) (string, error) {
	dir := b.uploadPath(uploadID)
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("unknown upload id %q: %w", uploadID, err)
	}
	path := filepath.Join(dir, partFileName(partNumber))
	if err := b.writeAtomic(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to store part: %w", err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

func (b *LocalBackend) ListParts(ctx context.Context, bucket, key, uploadID string) ([]Part, error) {
	dir := b.uploadPath(uploadID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unknown upload id %q: %w", uploadID, err)
	}

	var parts []Part
	for _, e := range entries {
		n, ok := strings.CutPrefix(e.Name(), "part.")
		if !ok {
			continue
		}
		num, err := strconv.Atoi(n)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read part %d: %w", num, err)
		}
		sum := md5.Sum(data)
		parts = append(parts, Part{Number: num, ETag: hex.EncodeToString(sum[:]), Size: int64(len(data))})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Number < parts[j].Number })
	return parts, nil
}

func (b *LocalBackend) CompleteMultipart(ctx context.Context, bucket, key, uploadID string, parts []Part) (string, error) {
	recorded, err := b.ListParts(ctx, bucket, key, uploadID)
	if err != nil {
		return "", err
	}

	byNumber := make(map[int]Part, len(recorded))
	for _, p := range recorded {
		byNumber[p.Number] = p
	}
	for _, p := range parts {
		rec, ok := byNumber[p.Number]
		if !ok || rec.ETag != p.ETag {
			return "", fmt.Errorf("part %d does not match recorded state: %w", p.Number, common.ErrBackendFailure)
		}
	}

	dir := b.uploadPath(uploadID)
	final := b.objectPath(bucket, key)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(final), ".merge-*")
	if err != nil {
		return "", err
	}
	h := md5.New()
	w := io.MultiWriter(tmp, h)
	for _, p := range parts {
		data, err := os.ReadFile(filepath.Join(dir, partFileName(p.Number)))
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", fmt.Errorf("failed to read part %d: %w", p.Number, err)
		}
		if _, err := w.Write(data); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", err
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	_ = os.RemoveAll(dir)

	return hex.EncodeToString(h.Sum(nil)), nil
}
