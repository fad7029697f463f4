package config

import (
	"flag"

	"github.com/suitenumerique/drive-sub001/internal/flagx"
)

var knownFlags = []string{
	"-api", "-app", "-api-version", "-timeout", "-rps", "-burst",
	"-cache-ttl", "-session", "-log-level", "-log-format",
}

// parseFlags populates Config fields from command-line flags.
//
// args is filtered with flagx.FilterArgs first, so -c/-config and any flags
// owned by other components do not make parsing fail.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("drive", flag.ContinueOnError)

	fs.StringVar(&cfg.APIOrigin, "api", cfg.APIOrigin, "API origin")
	fs.StringVar(&cfg.AppOrigin, "app", cfg.AppOrigin, "front-end origin")
	fs.StringVar(&cfg.APIVersion, "api-version", cfg.APIVersion, "API version")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "default request timeout")
	fs.Float64Var(&cfg.RequestsPerSecond, "rps", cfg.RequestsPerSecond, "request rate limit, 0 disables it")
	fs.IntVar(&cfg.Burst, "burst", cfg.Burst, "rate limiter burst")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "read cache lifetime, 0 disables it")
	fs.StringVar(&cfg.SessionCookie, "session", cfg.SessionCookie, "session cookie to reuse")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		panic(err)
	}
}
