package config

import (
	"flag"
	"os"
	"time"

	"github.com/fileporter/fileporter/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-m string   upload mode: local, minio or oss
//	-b string   destination bucket name
//	-k string   object key prefix
//	-t int      presigned URL validity, minutes
//	-u string   S3 access key
//	-p string   S3 secret key
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Backend settings without a flag (OSS credentials, local root) are set via
// the JSON config file. The function first filters os.Args to only the
// flags it recognizes using flagx.FilterArgs, avoiding collisions with
// other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-m", "-b", "-k", "-t", "-u", "-p", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.UploadMode, "m", config.UploadMode, "upload mode (local, minio or oss)")
	fs.StringVar(&config.Bucket, "b", config.Bucket, "destination bucket")
	fs.StringVar(&config.KeyPrefix, "k", config.KeyPrefix, "object key prefix")

	presignTTL := fs.Int("t", int(config.PresignTTL.Minutes()), "presigned URL validity (in minutes)")

	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.PresignTTL = time.Duration(*presignTTL) * time.Minute
}
