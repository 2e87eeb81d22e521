package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileporter/fileporter/internal/server/config"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"local", "minio", "oss"} {
		mode, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), mode)
	}

	for _, s := range []string{"", "s3", "LOCAL", "minio "} {
		_, err := ParseMode(s)
		assert.Error(t, err, "mode %q must be rejected", s)
	}
}

func TestNewBackend_UnknownModeIsFatal(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.UploadMode = "dropbox"

	_, err := NewBackend(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewBackend_Local(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.UploadMode = "local"
	cfg.LocalRoot = t.TempDir()

	b, err := NewBackend(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := b.(*LocalBackend)
	assert.True(t, ok)
}
