// Package server initializes and runs the upload service: it opens the
// metadata database, selects the storage backend, makes sure the bucket
// exists and serves the HTTP API until interrupted.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/fileporter/fileporter/internal/logging"
	"github.com/fileporter/fileporter/internal/server/config"
	"github.com/fileporter/fileporter/internal/server/httpapi"
	"github.com/fileporter/fileporter/internal/server/repositories"
	"github.com/fileporter/fileporter/internal/server/services"
	"github.com/fileporter/fileporter/internal/server/storage"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   *repositories.Manager
	backend storage.Backend
	service *services.UploadService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	rm, err := repositories.NewManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	backend, err := storage.NewBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if err := ensureBucket(ctx, backend, cfg.Bucket); err != nil {
		return nil, fmt.Errorf("bucket init error: %w", err)
	}

	svc := services.NewUploadService(rm.Files(), rm.Chunks(), backend, cfg, logger)

	return &App{
		config:  cfg,
		logger:  logger,
		repos:   rm,
		backend: backend,
		service: svc,
	}, nil
}

func ensureBucket(ctx context.Context, backend storage.Backend, bucket string) error {
	exists, err := backend.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return backend.CreateBucket(ctx, bucket)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) newRouter() *mux.Router {
	router := mux.NewRouter()
	httpapi.NewHandler(app.service, app.logger).Register(router)

	// in local mode the presigned URLs point back at this process
	if storage.Mode(app.config.UploadMode) == storage.ModeLocal {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(app.config.LocalRoot)))
		router.PathPrefix("/static/").Handler(fs).Methods(http.MethodGet)
	}

	return router
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:         app.config.EndpointAddrHTTP,
		Handler:      app.newRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "server shutdown error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...", "mode", app.config.UploadMode, "bucket", app.config.Bucket)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
	app.logger.Info(ctx, "Server exited")
}
