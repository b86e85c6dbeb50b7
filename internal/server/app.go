// Package server initializes and runs the backend application: it opens the
// database, applies migrations, builds the services and the artifact store,
// and serves the HTTP API with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/deepdrunktalk/backend/internal/logging"
	"github.com/deepdrunktalk/backend/internal/server/config"
	"github.com/deepdrunktalk/backend/internal/server/httpapi"
	"github.com/deepdrunktalk/backend/internal/server/repositories/repomanager"
	"github.com/deepdrunktalk/backend/internal/server/services"
	"github.com/deepdrunktalk/backend/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := newArtifactStore(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	userService := services.NewUserService(db, rm, cfg)
	conversationService := services.NewConversationService(db, rm)
	audioService := services.NewAudioService(db, rm, store, cfg)

	httpServer := httpapi.NewServer(cfg, logger, userService, conversationService, audioService)

	return &App{config: cfg, logger: logger, db: db, server: httpServer}, nil
}

func newArtifactStore(ctx context.Context, cfg *config.Config) (storage.ArtifactStore, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return storage.NewS3Store(ctx, cfg)
	case config.StorageLocal:
		return storage.NewLocalStore(cfg.UploadsDir), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
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

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
