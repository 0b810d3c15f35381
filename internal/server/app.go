// Package server wires the files manager together: it opens the database,
// applies migrations, picks the content store and runs the HTTP API, the
// gRPC health endpoint, the thumbnail workers and the session janitor until
// the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/config"
	"github.com/dmitrijs2005/filesmanager/internal/server/httpapi"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
	"github.com/dmitrijs2005/filesmanager/internal/server/storage"
	"github.com/dmitrijs2005/filesmanager/internal/server/thumbnails"
	"github.com/spf13/afero"

	gs "github.com/dmitrijs2005/filesmanager/internal/server/grpc"
)

const healthProbeInterval = 15 * time.Second

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	store         storage.ContentStore
	userService   *services.UserService
	fileService   *services.FileService
	statusService *services.StatusService
}

// newContentStore picks the backend named by the config. fs backs the local one.
func newContentStore(ctx context.Context, c *config.Config, fs afero.Fs) (storage.ContentStore, error) {
	switch c.StorageBackend {
	case config.StorageBackendLocal:
		return storage.NewFSStore(fs, c.FolderPath)
	case config.StorageBackendS3:
		return storage.NewS3Store(ctx, storage.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{Level: c.LogLevel, JSON: c.LogJSON})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	store, err := newContentStore(ctx, c, afero.NewOsFs())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	return &App{
		config:        c,
		logger:        logger,
		db:            db,
		repomanager:   rm,
		store:         store,
		userService:   services.NewUserService(db, rm, c),
		fileService:   services.NewFileService(db, rm, store, c),
		statusService: services.NewStatusService(db, rm, store, c.StoreTimeout),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.userService, app.fileService, app.statusService, app.logger.With("module", "http"))
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.statusService, healthProbeInterval, app.logger.With("module", "grpc"))
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startThumbnailWorkers(ctx context.Context) {
	queue := thumbnails.NewPollingQueue(app.db, app.repomanager, app.config.JobPollInterval, app.config.StoreTimeout)
	processor := thumbnails.NewProcessor(app.repomanager.Files(app.db), app.store, app.config.StoreTimeout, app.config.ThumbnailMaxPixels)
	thumbnails.NewPool(queue, processor, app.config.ThumbnailWorkers, app.logger.With("module", "thumbnails")).Run(ctx)
}

func (app *App) startSessionJanitor(ctx context.Context) {
	sessions.RunJanitor(ctx, app.repomanager.Sessions(app.db), app.config.SessionPurgeInterval, app.config.StoreTimeout, app.logger.With("module", "sessions"))
}

// Run blocks until a termination signal arrives or a server fails, then
// waits for every component to stop and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	start := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	start(func() { app.startHTTPServer(ctx, cancelFunc) })
	start(func() { app.startGRPCServer(ctx, cancelFunc) })
	start(func() { app.startThumbnailWorkers(ctx) })
	start(func() { app.startSessionJanitor(ctx) })

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
