// Package server runs the development backend: an in-memory Drive API with
// local or S3 upload storage, stopped gracefully on SIGINT, SIGTERM or
// SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/logging"
	"github.com/suitenumerique/drive-sub001/internal/server/api"
	"github.com/suitenumerique/drive-sub001/internal/server/config"
	"github.com/suitenumerique/drive-sub001/internal/server/storage"
	"github.com/suitenumerique/drive-sub001/internal/server/store"
)

const shutdownTimeout = 5 * time.Second

// DevUser is the account every request acts as.
var DevUser = models.User{
	Email:     "developer@drive.localhost",
	FullName:  "Drive Developer",
	ShortName: "Dev",
	Language:  "en-us",
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   *store.Store
	storage storage.Backend

	// listening receives the bound address once the server accepts
	// connections; used by tests listening on port 0.
	listening chan net.Addr
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var backend storage.Backend
	switch c.Storage {
	case config.StorageS3:
		backend = storage.NewS3(c)
	default:
		backend = storage.NewLocal(c.PublicURL, []byte(c.SecretKey), c.UploadTokenTTL)
	}

	return &App{
		config:    c,
		logger:    logger,
		store:     store.New(DevUser),
		storage:   backend,
		listening: make(chan net.Addr, 1),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Handler:           api.NewServer(app.config, app.store, app.storage, app.logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listen, err := net.Listen("tcp", app.config.ListenAddr)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}
	app.listening <- listen.Addr()

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn(ctx, "shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String(), "storage", app.config.Storage)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
}
