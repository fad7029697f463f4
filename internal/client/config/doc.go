// Package config loads runtime configuration for the drive CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, then DRIVE_* environment
//     variables (see parseEnv).
//  3. Optional config file selected with -c or -config (see parseFile).
//     Files ending in .yaml or .yml are read as YAML, anything else as JSON.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-api string         API origin, e.g. https://drive.example.com
//	-app string         front-end origin used for 401/403 pages and the SDK
//	-api-version string API version (default 1.0)
//	-timeout duration   default request timeout
//	-rps float          client-side request rate limit (0 disables it)
//	-burst int          rate limiter burst
//	-cache-ttl duration read cache lifetime (0 disables the cache)
//	-session string     session cookie value to reuse
//	-log-level string   debug, info, warn or error
//	-log-format string  text or json
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "api_origin": "https://drive.example.com",
//	  "request_timeout": "30s",
//	  "requests_per_second": 10,
//	  "log_level": "debug"
//	}
//
// The same keys are used in YAML files.
//
// Loading panics on unreadable or malformed files and on invalid flag
// values; semantic checks are done by (*Config).Validate.
package config
