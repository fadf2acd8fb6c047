// Package app defines the App struct that composes the shop's dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database pool
//   - repository bindings
//
// Commands build one App, use it, and Close it before exiting.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/go-shopdb/internal/config"
	"github.com/deppfellow/go-shopdb/internal/database"
	"github.com/deppfellow/go-shopdb/internal/repository"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/go-shopdb/internal/logger"
)

// App is the application container that holds shared resources.
type App struct {
	// Config holds all environment/config values for the app.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	// DB holds the PostgreSQL pool wrapper.
	DB *database.Database

	// Repositories exposes the blocking and async bindings over DB.
	Repositories *repository.Repositories
}

// Bootstrap loads the configuration from the environment and builds an App.
func Bootstrap() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	loggerService, err := loggerPkg.NewLoggerService(cfg.Observability)
	if err != nil {
		return nil, err
	}

	logger := loggerPkg.NewLoggerWithService(cfg.Observability, loggerService)

	a, err := New(cfg, &logger, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, err
	}
	return a, nil
}

// New constructs an App and connects to PostgreSQL.
//
// The pool is pinged before New returns, so an unreachable database is
// reported here rather than on the first repository call.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*App, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repos := repository.NewRepositories(db, logger, cfg.Observability.Logging.SlowQueryThreshold)

	return &App{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Repositories:  repos,
	}, nil
}

// Migrate bootstraps the shop schema.
func (a *App) Migrate(ctx context.Context) error {
	return database.Migrate(ctx, a.Logger, a.Config.Database.DSN())
}

// Close releases the pool and flushes New Relic.
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}

	a.LoggerService.Shutdown()

	return errors.Join(errs...)
}
