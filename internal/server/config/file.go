package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/suitenumerique/drive-sub001/internal/flagx"
	"github.com/suitenumerique/drive-sub001/internal/timex"
)

// FileConfig is an intermediate DTO used only for reading config files.
// Zero values leave the current setting untouched.
type FileConfig struct {
	ListenAddr        string         `json:"listen_addr" yaml:"listen_addr"`
	PublicURL         string         `json:"public_url" yaml:"public_url"`
	AppOrigins        []string       `json:"app_origins" yaml:"app_origins"`
	SecretKey         string         `json:"secret_key" yaml:"secret_key"`
	UploadTokenTTL    timex.Duration `json:"upload_token_ttl" yaml:"upload_token_ttl"`
	Storage           string         `json:"storage" yaml:"storage"`
	S3RootUser        string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region          string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	RequestsPerSecond float64        `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int            `json:"burst" yaml:"burst"`
	LogLevel          string         `json:"log_level" yaml:"log_level"`
	LogFormat         string         `json:"log_format" yaml:"log_format"`
}

// parseFile loads the file named by -c or -config, if any, into config.
// YAML is used for .yaml/.yml files, JSON otherwise. The function panics
// if the file cannot be read or decoded.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	set(&config.ListenAddr, c.ListenAddr)
	set(&config.PublicURL, c.PublicURL)
	if len(c.AppOrigins) > 0 {
		config.AppOrigins = c.AppOrigins
	}
	set(&config.SecretKey, c.SecretKey)
	if c.UploadTokenTTL.Duration > 0 {
		config.UploadTokenTTL = c.UploadTokenTTL.Duration
	}
	set(&config.Storage, c.Storage)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.RequestsPerSecond > 0 {
		config.RequestsPerSecond = c.RequestsPerSecond
	}
	if c.Burst > 0 {
		config.Burst = c.Burst
	}
	set(&config.LogLevel, c.LogLevel)
	set(&config.LogFormat, c.LogFormat)
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
