package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/suitenumerique/drive-sub001/internal/buildinfo"
	"github.com/suitenumerique/drive-sub001/internal/client/cli"
	"github.com/suitenumerique/drive-sub001/internal/client/config"
	"github.com/suitenumerique/drive-sub001/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
