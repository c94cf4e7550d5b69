package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamai/teamai-api/internal/config"
	"github.com/teamai/teamai-api/internal/distribution"
	"github.com/teamai/teamai-api/internal/events"
	"github.com/teamai/teamai-api/internal/generation"
	"github.com/teamai/teamai-api/internal/platform/gemini"
	"github.com/teamai/teamai-api/internal/platform/openai"
	"github.com/teamai/teamai-api/internal/platform/postgres"
	"github.com/teamai/teamai-api/internal/service"
	"github.com/teamai/teamai-api/internal/service/auth"
	"github.com/teamai/teamai-api/internal/store"
)

// application holds the wired dependencies of a running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	// location is the zone of deadlines and of "today".
	location *time.Location

	userStore    store.UserStore
	projectStore store.ProjectStore
	taskStore    store.TaskStore
	transactor   store.Transactor

	jwtService       auth.JWTService
	completionClient generation.CompletionClient
	eventEmitter     *events.InMemoryEventEmitter
	engine           *distribution.Engine

	userService    service.UserService
	projectService service.ProjectService
	taskService    service.TaskService
	chatService    service.ChatService
}

// newApplication wires stores, services and the distribution engine on top
// of an open database.
func newApplication(ctx context.Context, cfg *config.Config, l *slog.Logger, db *sql.DB) (*application, error) {
	loc, err := cfg.Server.Location()
	if err != nil {
		return nil, err
	}
	app := &application{
		config:       cfg,
		logger:       l,
		db:           db,
		location:     loc,
		userStore:    postgres.NewPostgresUserStore(db, l),
		projectStore: postgres.NewPostgresProjectStore(db, loc, l),
		taskStore:    postgres.NewPostgresTaskStore(db, l),
		transactor:   store.NewDBTransactor(db),
		eventEmitter: events.NewInMemoryEventEmitter(l),
	}
	if err := app.wire(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (app *application) wire(ctx context.Context) error {
	cfg, l := app.config, app.logger

	var err error
	if app.location == nil {
		if app.location, err = cfg.Server.Location(); err != nil {
			return err
		}
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)

	app.completionClient, err = newCompletionClient(ctx, cfg.LLM, l)
	if err != nil {
		return err
	}

	progress, err := distribution.NewProgressRecalculator(
		app.projectStore, app.taskStore, app.transactor, distribution.NewProjectLocks(), l)
	if err != nil {
		return fmt.Errorf("failed to create progress recalculator: %w", err)
	}
	app.eventEmitter.RegisterHandler(progress, events.TypeTaskCreated, events.TypeTaskStatusChanged)

	app.engine, err = distribution.NewEngine(
		app.projectStore, app.taskStore, app.completionClient, progress, app.eventEmitter, l,
		distribution.WithLocation(app.location))
	if err != nil {
		return fmt.Errorf("failed to create distribution engine: %w", err)
	}

	if app.userService, err = service.NewUserService(app.userStore, app.transactor, hasher, hasher, l); err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	if app.projectService, err = service.NewProjectService(
		app.projectStore, app.taskStore, app.userStore, app.transactor, l); err != nil {
		return fmt.Errorf("failed to create project service: %w", err)
	}
	if app.taskService, err = service.NewTaskService(
		app.taskStore, app.projectStore, app.userStore, app.transactor, app.eventEmitter, l,
		service.WithClock(time.Now, app.location)); err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	if app.chatService, err = service.NewChatService(app.completionClient, l); err != nil {
		return fmt.Errorf("failed to create chat service: %w", err)
	}

	l.Info("application initialized")
	return nil
}

// newCompletionClient picks the configured provider. Without a usable
// credential every call fails with ErrConfigurationMissing and callers use
// their fallbacks.
func newCompletionClient(ctx context.Context, cfg config.LLMConfig, l *slog.Logger) (generation.CompletionClient, error) {
	var (
		client generation.CompletionClient
		err    error
	)
	switch cfg.Provider {
	case "gemini":
		client, err = gemini.NewClient(ctx, cfg, l)
	default:
		client, err = openai.NewClient(cfg, l)
	}
	if errors.Is(err, generation.ErrConfigurationMissing) {
		l.Warn("no LLM credential configured, using template fallback", "provider", cfg.Provider)
		return generation.Unconfigured{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s completion client: %w", cfg.Provider, err)
	}

	guarded, err := generation.NewGuardedClient(client,
		time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.MaxConcurrentCalls, l)
	if err != nil {
		return nil, fmt.Errorf("failed to guard completion client: %w", err)
	}
	l.Info("LLM completion client initialized", "provider", cfg.Provider, "model", cfg.Model)
	return guarded, nil
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources after the server stops.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
