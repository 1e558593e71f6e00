// Package server initializes and runs the catalog application server: it
// opens the database, runs migrations, picks the blob backend, wires services
// and handlers, and serves HTTP until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/souvenirshop/backend/internal/blob"
	"github.com/souvenirshop/backend/internal/logging"
	"github.com/souvenirshop/backend/internal/server/config"
	handler "github.com/souvenirshop/backend/internal/server/handler/http"
	"github.com/souvenirshop/backend/internal/server/repositories/repomanager"
	"github.com/souvenirshop/backend/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	blobs, staticDir, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	userService := services.NewUserService(db, rm, cfg, logger)
	souvenirService := services.NewSouvenirService(db, rm, blobs, logger)
	imageService := services.NewImageService(db, rm, blobs, logger)

	h := handler.NewRouter(
		&handler.UserHandler{Users: userService},
		&handler.SouvenirHandler{Souvenirs: souvenirService},
		&handler.ImageHandler{Images: imageService},
		logger,
		[]byte(cfg.SecretKey),
		staticDir,
	)

	return &App{config: cfg, logger: logger, db: db, handler: h}, nil
}

// newBlobStore picks the payload backend. The filesystem backend also gets
// its directory served statically; S3 objects are not proxied.
func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, string, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendFS:
		s, err := blob.NewFSStore(cfg.UploadDir)
		if err != nil {
			return nil, "", err
		}
		return s, s.Dir(), nil
	case config.BlobBackendS3:
		s, err := blob.NewS3Store(ctx, blob.S3Config{
			User:         cfg.S3User,
			Password:     cfg.S3Password,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	default:
		return nil, "", fmt.Errorf("unknown blob backend: %q", cfg.BlobBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{Addr: app.config.EndpointAddr, Handler: app.handler}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server error", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err.Error())
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err.Error())
	}

	app.logger.Info(shutdownCtx, "app stopped")
}
