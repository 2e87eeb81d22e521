package services

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fileporter/fileporter/internal/common"
)

var (
	htmlImgPattern = regexp.MustCompile(`(?i)<img\b[^>]*src\s*=\s*(['"])(.*?)(['"])[^>]*>`)
	mdImgPattern   = regexp.MustCompile(`!\[[^\]]*\]\((.*?)\)`)
)

func isWebPath(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "ftp://")
}

// Transfer rewrites document content, replacing HTML and Markdown image
// references that point at local files with access URLs of the uploaded
// copies. Identical images resolve to their already-stored object instead
// of being uploaded twice. Web URLs are left untouched.
func (s *UploadService) Transfer(ctx context.Context, content string) (string, error) {
	var firstErr error

	content = htmlImgPattern.ReplaceAllStringFunc(content, func(tag string) string {
		m := htmlImgPattern.FindStringSubmatch(tag)
		src := m[2]
		if isWebPath(src) {
			return tag
		}
		url, err := s.uploadLocalImage(ctx, src)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return tag
		}
		return strings.Replace(tag, m[1]+src+m[3], m[1]+url+m[3], 1)
	})
	if firstErr != nil {
		return "", firstErr
	}

	content = mdImgPattern.ReplaceAllStringFunc(content, func(img string) string {
		m := mdImgPattern.FindStringSubmatch(img)
		src := m[1]
		if isWebPath(src) {
			return img
		}
		url, err := s.uploadLocalImage(ctx, src)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return img
		}
		return strings.Replace(img, "("+src+")", "("+url+")", 1)
	})
	if firstErr != nil {
		return "", firstErr
	}

	return content, nil
}

// uploadLocalImage uploads the file at localPath through the single-file
// path, using the MD5 of its bytes as the dedup identifier.
func (s *UploadService) uploadLocalImage(ctx context.Context, localPath string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to read image %q: %w", localPath, err)
	}
	sum := md5.Sum(data)
	identifier := hex.EncodeToString(sum[:])

	// identical content: point at the stored copy instead of re-uploading
	existing, err := s.files.GetByIdentifier(ctx, identifier)
	if err == nil {
		return s.backend.PresignedURL(ctx, s.config.Bucket, existing.ObjectKey, s.config.PresignTTL)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return "", err
	}

	return s.UploadSmall(ctx, filepath.Base(localPath), identifier, int64(len(data)), bytes.NewReader(data))
}
