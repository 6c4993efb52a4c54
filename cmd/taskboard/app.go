package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/events"
	"github.com/phrazzld/taskboard/internal/platform/sqlstore"
	"github.com/phrazzld/taskboard/internal/redact"
	"github.com/phrazzld/taskboard/internal/service"
	"github.com/phrazzld/taskboard/internal/store"
	"github.com/phrazzld/taskboard/internal/store/memory"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger

	// Task storage; closer is nil for the memory backend
	taskStore store.TaskStore
	closer    io.Closer

	// Event system
	eventEmitter *events.InMemoryEventEmitter

	// Service interfaces
	taskService service.TaskService
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.taskStore, app.closer, err = openTaskStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize event emitter and register the audit log
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewAuditLogHandler(logger))

	app.taskService, err = service.NewTaskService(
		app.taskStore,
		logger,
		service.WithEventEmitter(app.eventEmitter),
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("Application initialized successfully",
		"backend", cfg.Store.Backend)
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// setupRouter builds the HTTP handler for the application's services.
func (app *application) setupRouter() http.Handler {
	return newRouter(app.taskService, app.logger)
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.closer == nil {
		return
	}
	if err := app.closer.Close(); err != nil {
		app.logger.Error("Error closing database connection", "error", err)
	}
	app.closer = nil
}

// openTaskStore builds the store selected by store.backend.
func openTaskStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.TaskStore, io.Closer, error) {
	if cfg.Store.Backend == config.BackendMemory {
		logger.Info("using in-memory task store; data is lost on restart")
		return memory.New(memory.WithLogger(logger)), nil, nil
	}

	s, err := openSQLStore(ctx, cfg, logger, cfg.Database.AutoMigrate)
	if err != nil {
		return nil, nil, err
	}
	return s, s, nil
}

// openSQLStore opens the configured SQL backend.
func openSQLStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, autoMigrate bool) (*sqlstore.Store, error) {
	dialect, err := sqlstore.ParseDialect(cfg.Store.Backend)
	if err != nil {
		return nil, err
	}

	dsn := cfg.Database.URL
	if dialect == sqlstore.DialectSQLite {
		dsn = cfg.Database.SQLitePath
	}

	logger.Info("connecting to database",
		"dialect", string(dialect),
		"dsn", redact.URL(dsn))

	s, err := sqlstore.Open(ctx, sqlstore.Options{
		Dialect:      dialect,
		DSN:          dsn,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		AutoMigrate:  autoMigrate,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", dialect, err)
	}
	return s, nil
}
