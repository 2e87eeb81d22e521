package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/fileporter/fileporter/internal/flagx"
	"github.com/fileporter/fileporter/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "24h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	UploadMode       string         `json:"upload_mode"`
	Bucket           string         `json:"bucket"`
	KeyPrefix        string         `json:"key_prefix"`
	PresignTTL       timex.Duration `json:"presign_ttl"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	OSSEndpoint      string         `json:"oss_endpoint"`
	OSSAccessKey     string         `json:"oss_access_key"`
	OSSSecretKey     string         `json:"oss_secret_key"`
	OSSUseSSL        bool           `json:"oss_use_ssl"`
	LocalRoot        string         `json:"local_root"`
	LocalBaseURL     string         `json:"local_base_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics: a broken config file is a
// startup-time fatal error.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.UploadMode = c.UploadMode
	config.Bucket = c.Bucket
	config.KeyPrefix = c.KeyPrefix
	config.PresignTTL = time.Duration(c.PresignTTL.Duration)
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.OSSEndpoint = c.OSSEndpoint
	config.OSSAccessKey = c.OSSAccessKey
	config.OSSSecretKey = c.OSSSecretKey
	config.OSSUseSSL = c.OSSUseSSL
	config.LocalRoot = c.LocalRoot
	config.LocalBaseURL = c.LocalBaseURL
}
