package config

import (
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Config holds runtime settings for the drive CLI.
type Config struct {
	APIOrigin         string
	APIVersion        string
	AppOrigin         string
	CSRFBootstrapPath string

	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Burst             int
	CacheTTL          time.Duration

	SessionCookie string

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIOrigin = "http://localhost:8071"
	c.APIVersion = "1.0"
	c.AppOrigin = ""
	c.CSRFBootstrapPath = "config/"
	c.RequestTimeout = 30 * time.Second
	c.RequestsPerSecond = 0
	c.Burst = 1
	c.CacheTTL = 30 * time.Second
	c.SessionCookie = ""
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// EffectiveAppOrigin returns AppOrigin, or APIOrigin when it is unset.
func (c *Config) EffectiveAppOrigin() string {
	if c.AppOrigin != "" {
		return c.AppOrigin
	}
	return c.APIOrigin
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIOrigin, validation.Required, is.URL),
		validation.Field(&c.AppOrigin, is.URL),
		validation.Field(&c.APIVersion, validation.Required),
		validation.Field(&c.CSRFBootstrapPath, validation.Required),
		validation.Field(&c.RequestTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RequestsPerSecond, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Min(1)),
		validation.Field(&c.CacheTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
	)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, the config file and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
