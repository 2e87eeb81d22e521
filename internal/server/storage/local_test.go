package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalBackend {
	t.Helper()
	b, err := NewLocalBackend(t.TempDir(), "http://127.0.0.1:8080/static/")
	require.NoError(t, err)
	return b
}

func TestLocal_BucketLifecycle(t *testing.T) {
	b := newLocal(t)
	ctx := context.Background()

	exists, err := b.BucketExists(ctx, "files")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, b.CreateBucket(ctx, "files"))
	// idempotent
	require.NoError(t, b.CreateBucket(ctx, "files"))

	exists, err = b.BucketExists(ctx, "files")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocal_PutGetDeleteObject(t *testing.T) {
	b := newLocal(t)
	ctx := context.Background()
	require.NoError(t, b.CreateBucket(ctx, "files"))

	exists, err := b.ObjectExists(ctx, "files", "uploads/a.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	payload := "hello world"
	require.NoError(t, b.PutObject(ctx, "files", "uploads/a.txt", strings.NewReader(payload), int64(len(payload)), "text/plain"))

	exists, err = b.ObjectExists(ctx, "files", "uploads/a.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	// no stray temp files left behind next to the object
	entries, err := os.ReadDir(filepath.Join(b.root, "files", "uploads"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, b.DeleteObject(ctx, "files", "uploads/a.txt"))
	// deleting a missing object succeeds
	require.NoError(t, b.DeleteObject(ctx, "files", "uploads/a.txt"))
}

func TestLocal_PresignedURL(t *testing.T) {
	b := newLocal(t)
	ctx := context.Background()

	url, err := b.PresignedURL(ctx, "files", "uploads/a.txt", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/static/files/uploads/a.txt", url)

	_, err = b.PresignedURL(ctx, "files", "uploads/a.txt", 0)
	assert.Error(t, err)
	_, err = b.PresignedURL(ctx, "files", "uploads/a.txt", -time.Second)
	assert.Error(t, err)
}

func TestLocal_MultipartRoundTrip(t *testing.T) {
	b := newLocal(t)
	ctx := context.Background()
	require.NoError(t, b.CreateBucket(ctx, "files"))

	uploadID, err := b.InitiateMultipart(ctx, "files", "uploads/big.bin", "application/octet-stream", 11)
	require.NoError(t, err)
	require.NotEmpty(t, uploadID)

	// destination not readable while parts are staged
	exists, err := b.ObjectExists(ctx, "files", "uploads/big.bin")
	require.NoError(t, err)
	assert.False(t, exists)

	etag1, err := b.UploadPart(ctx, "files", "uploads/big.bin", uploadID, 1, []byte("hello "))
	require.NoError(t, err)
	etag2, err := b.UploadPart(ctx, "files", "uploads/big.bin", uploadID, 2, []byte("world"))
	require.NoError(t, err)

	parts, err := b.ListParts(ctx, "files", "uploads/big.bin", uploadID)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, 1, parts[0].Number)
	assert.Equal(t, etag1, parts[0].ETag)
	assert.Equal(t, int64(6), parts[0].Size)
	assert.Equal(t, 2, parts[1].Number)
	assert.Equal(t, etag2, parts[1].ETag)

	_, err = b.CompleteMultipart(ctx, "files", "uploads/big.bin", uploadID, parts)
	require.NoError(t, err)

	exists, err = b.ObjectExists(ctx, "files", "uploads/big.bin")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := os.ReadFile(filepath.Join(b.root, "files", "uploads", "big.bin"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	// staging dir is gone, the session cannot be listed again
	_, err = b.ListParts(ctx, "files", "uploads/big.bin", uploadID)
	assert.Error(t, err)
}

func TestLocal_UploadPart_OverwriteIsLastWriteWins(t *testing.T) {
	b := newLocal(t)
	ctx := context.Background()

	uploadID, err := b.InitiateMultipart(ctx, "files", "k", "application/octet-stream", 4)
	require.NoError(t, err)

	_, err = b.UploadPart(ctx, "files", "k", uploadID, 1, []byte("old"))
	require.NoError(t, err)
	_, err = b.UploadPart(ctx, "files", "k", uploadID, 1, []byte("new!"))
	require.NoError(t, err)

	parts, err := b.ListParts(ctx, "files", "k", uploadID)
	require.NoError(t, err)
	require.Len(t, parts, 1)

	sum := md5.Sum([]byte("new!"))
	assert.Equal(t, hex.EncodeToString(sum[:]), parts[0].ETag)
	assert.Equal(t, int64(4), parts[0].Size)
}

func TestLocal_CompleteMultipart_ETagMismatchFails(t *testing.T) {
	b := newLocal(t)
	ctx := context.Background()

	uploadID, err := b.InitiateMultipart(ctx, "files", "k", "application/octet-stream", 3)
	require.NoError(t, err)
	_, err = b.UploadPart(ctx, "files", "k", uploadID, 1, []byte("abc"))
	require.NoError(t, err)

	_, err = b.CompleteMultipart(ctx, "files", "k", uploadID, []Part{{Number: 1, ETag: "bogus"}})
	assert.Error(t, err)

	// session must survive a failed completion
	parts, err := b.ListParts(ctx, "files", "k", uploadID)
	require.NoError(t, err)
	assert.Len(t, parts, 1)
}

func TestLocal_UploadPart_UnknownUploadID(t *testing.T) {
	b := newLocal(t)
	ctx := context.Background()

	_, err := b.UploadPart(ctx, "files", "k", "no-such-upload", 1, []byte("x"))
	assert.Error(t, err)
	_, err = b.ListParts(ctx, "files", "k", "no-such-upload")
	assert.Error(t, err)
}
