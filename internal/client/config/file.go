package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/suitenumerique/drive-sub001/internal/flagx"
	"github.com/suitenumerique/drive-sub001/internal/timex"
)

// FileConfig is a DTO used exclusively for decoding config files. Pointer
// fields tell "absent" from "zero", so a file only overrides what it names.
type FileConfig struct {
	APIOrigin         *string         `json:"api_origin" yaml:"api_origin"`
	APIVersion        *string         `json:"api_version" yaml:"api_version"`
	AppOrigin         *string         `json:"app_origin" yaml:"app_origin"`
	CSRFBootstrapPath *string         `json:"csrf_bootstrap_path" yaml:"csrf_bootstrap_path"`
	RequestTimeout    *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RequestsPerSecond *float64        `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             *int            `json:"burst" yaml:"burst"`
	CacheTTL          *timex.Duration `json:"cache_ttl" yaml:"cache_ttl"`
	SessionCookie     *string         `json:"session" yaml:"session"`
	LogLevel          *string         `json:"log_level" yaml:"log_level"`
	LogFormat         *string         `json:"log_format" yaml:"log_format"`
}

// parseFile overlays cfg with the file named by -c/-config, if any.
// It panics on read or decode errors.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.APIOrigin, fc.APIOrigin)
	setString(&cfg.APIVersion, fc.APIVersion)
	setString(&cfg.AppOrigin, fc.AppOrigin)
	setString(&cfg.CSRFBootstrapPath, fc.CSRFBootstrapPath)
	setDuration(&cfg.RequestTimeout, fc.RequestTimeout)
	if fc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *fc.RequestsPerSecond
	}
	if fc.Burst != nil {
		cfg.Burst = *fc.Burst
	}
	setDuration(&cfg.CacheTTL, fc.CacheTTL)
	setString(&cfg.SessionCookie, fc.SessionCookie)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
