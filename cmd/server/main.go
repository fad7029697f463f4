package main

import (
	"context"
	"log"
	"os"

	"github.com/suitenumerique/drive-sub001/internal/buildinfo"
	"github.com/suitenumerique/drive-sub001/internal/logging"
	"github.com/suitenumerique/drive-sub001/internal/server"
	"github.com/suitenumerique/drive-sub001/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	app, err := server.NewApp(cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(context.Background())

}
