package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("overrides from flags", func(t *testing.T) {
		os.Args = []string{"testbin",
			"-a", ":9090",
			"-d", "postgres://u:p@h:5432/x",
			"-m", "local",
			"-b", "mybucket",
			"-k", "img",
			"-t", "30",
			"-u", "ak",
			"-p", "sk",
			"-g", "eu-west-1",
			"-e", "http://minio:9000/",
		}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://u:p@h:5432/x", cfg.DatabaseDSN)
		assert.Equal(t, "local", cfg.UploadMode)
		assert.Equal(t, "mybucket", cfg.Bucket)
		assert.Equal(t, "img", cfg.KeyPrefix)
		assert.Equal(t, 30*time.Minute, cfg.PresignTTL)
		assert.Equal(t, "ak", cfg.S3AccessKey)
		assert.Equal(t, "sk", cfg.S3SecretKey)
		assert.Equal(t, "eu-west-1", cfg.S3Region)
		assert.Equal(t, "http://minio:9000/", cfg.S3BaseEndpoint)
	})

	t.Run("defaults survive when no flags given", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, 24*time.Hour, cfg.PresignTTL)
	})
}
