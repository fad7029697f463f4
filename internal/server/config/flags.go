package config

import (
	"flag"
	"time"

	"github.com/suitenumerique/drive-sub001/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8071")
//	-url string public origin of the API
//	-o string   comma-separated front-end origins allowed by CORS
//	-s string   upload token HMAC secret key
//	-t int      upload token validity, minutes
//	-storage    "local" or "s3"
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-rps float  per-client requests per second, 0 disables the limit
//	-burst int  per-client burst
//	-log-level / -log-format
//
// args is filtered with flagx.FilterArgs first so -c/-config does not make
// parsing fail. The token validity is given in minutes and only replaces
// the current value when -t is present.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{
		"-a", "-url", "-o", "-s", "-t", "-storage", "-u", "-p", "-b", "-g", "-e",
		"-rps", "-burst", "-log-level", "-log-format",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.PublicURL, "url", config.PublicURL, "public origin of the API")
	fs.Var(&config.AppOrigins, "o", "comma-separated front-end origins")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	uploadTokenTTL := fs.Int("t", int(config.UploadTokenTTL.Minutes()), "upload token validity (in minutes)")

	fs.StringVar(&config.Storage, "storage", config.Storage, "upload storage: local or s3")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.Float64Var(&config.RequestsPerSecond, "rps", config.RequestsPerSecond, "per-client requests per second")
	fs.IntVar(&config.Burst, "burst", config.Burst, "per-client burst")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format: text or json")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.UploadTokenTTL = time.Duration(*uploadTokenTTL) * time.Minute
		}
	})
}
