package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded from the working directory when present. Variables
// already set in the environment win over the file.
var envFile = ".env"

// parseEnv overlays cfg with DRIVE_* environment variables. Unparsable
// numeric or duration values panic, like malformed files and flags.
func parseEnv(cfg *Config) {
	_ = godotenv.Load(envFile)

	envString("DRIVE_API_ORIGIN", &cfg.APIOrigin)
	envString("DRIVE_API_VERSION", &cfg.APIVersion)
	envString("DRIVE_APP_ORIGIN", &cfg.AppOrigin)
	envString("DRIVE_CSRF_BOOTSTRAP_PATH", &cfg.CSRFBootstrapPath)
	envDuration("DRIVE_REQUEST_TIMEOUT", &cfg.RequestTimeout)
	envFloat("DRIVE_REQUESTS_PER_SECOND", &cfg.RequestsPerSecond)
	envInt("DRIVE_BURST", &cfg.Burst)
	envDuration("DRIVE_CACHE_TTL", &cfg.CacheTTL)
	envString("DRIVE_SESSION", &cfg.SessionCookie)
	envString("DRIVE_LOG_LEVEL", &cfg.LogLevel)
	envString("DRIVE_LOG_FORMAT", &cfg.LogFormat)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func envFloat(key string, dst *float64) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		panic(err)
	}
	*dst = f
}

func envInt(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}
