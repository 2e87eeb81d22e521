package storage

import (
	"context"
	"fmt"

	"github.com/fileporter/fileporter/internal/server/config"
)

// Mode is the closed set of storage backend variants. The mode string from
// configuration is parsed exactly once at startup; an unknown mode is a
// fatal configuration error, never a per-request failure.
type Mode string

const (
	// ModeLocal stores objects on the local filesystem.
	ModeLocal Mode = "local"
	// ModeMinio stores objects in a self-hosted S3-compatible store.
	ModeMinio Mode = "minio"
	// ModeOSS stores objects in a cloud object store (no chunked upload).
	ModeOSS Mode = "oss"
)

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLocal, ModeMinio, ModeOSS:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown upload mode %q (expected local, minio or oss)", s)
	}
}

// NewBackend resolves the configured mode to one concrete Backend. The
// result is shared read-only for the process lifetime.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	mode, err := ParseMode(cfg.UploadMode)
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeLocal:
		return NewLocalBackend(cfg.LocalRoot, cfg.LocalBaseURL)
	case ModeMinio:
		return NewS3Backend(ctx, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Region, cfg.S3BaseEndpoint)
	case ModeOSS:
		return NewOSSBackend(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey, cfg.OSSUseSSL)
	}
	// unreachable, ParseMode covers the enum
	return nil, fmt.Errorf("unhandled upload mode %q", mode)
}
