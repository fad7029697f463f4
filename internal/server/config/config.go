// Package config handles configuration for the development backend,
// including defaults, a JSON or YAML file overlay, and command-line flags.
package config

import (
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/suitenumerique/drive-sub001/internal/flagx"
)

// Storage backends for upload policies.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds runtime settings for the development backend.
//
// Fields:
//   - ListenAddr: bind address of the HTTP API.
//   - PublicURL: origin the API is reached at; local upload URLs are built on it.
//   - AppOrigins: front-end origins allowed by CORS.
//   - SecretKey: HMAC secret for signing local upload tokens (HS256).
//   - UploadTokenTTL: lifetime of an upload policy.
//   - Storage: "local" keeps uploads in memory; "s3" presigns PUTs on the bucket.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - RequestsPerSecond / Burst: per-client rate limit, 0 disables it.
type Config struct {
	ListenAddr     string
	PublicURL      string
	AppOrigins     flagx.CSV
	SecretKey      string
	UploadTokenTTL time.Duration

	Storage        string
	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string

	RequestsPerSecond float64
	Burst             int

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8071"
	c.PublicURL = "http://localhost:8071"
	c.AppOrigins = flagx.CSV{"http://localhost:3000"}
	c.SecretKey = "secretKey"
	c.UploadTokenTTL = 15 * time.Minute
	c.Storage = StorageLocal
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "drive-media-storage"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.RequestsPerSecond = 0
	c.Burst = 20
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ListenAddr, validation.Required),
		validation.Field(&c.PublicURL, validation.Required, is.URL),
		validation.Field(&c.AppOrigins, validation.Each(is.URL)),
		validation.Field(&c.SecretKey, validation.Required),
		validation.Field(&c.UploadTokenTTL, validation.Min(time.Second)),
		validation.Field(&c.Storage, validation.In(StorageLocal, StorageS3)),
		validation.Field(&c.S3Bucket, validation.When(c.Storage == StorageS3, validation.Required)),
		validation.Field(&c.S3BaseEndpoint, validation.When(c.Storage == StorageS3, validation.Required, is.URL)),
		validation.Field(&c.RequestsPerSecond, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Min(1)),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
	)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file and finally from command-line flags.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
