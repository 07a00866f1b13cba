package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tabclean/internal/config"
	apierrors "tabclean/internal/errors"
	"tabclean/internal/files"
	"tabclean/internal/infrastructure"
	customMiddleware "tabclean/internal/middleware"
	"tabclean/internal/operations"
	"tabclean/internal/services"
	"tabclean/internal/splitter"
	handlers "tabclean/internal/transport/http"
	ws "tabclean/internal/websocket"
	"tabclean/pkg/contracts"
)

// jobDrainTimeout bounds how long shutdown waits for a running operation
const jobDrainTimeout = 30 * time.Second

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	WebSocketHub     *ws.Hub
	JobQueue         *operations.JobQueue
	WorkspaceService *services.WorkspaceService
	HealthService    *services.HealthService
	ErrorHandler     *apierrors.ErrorHandler
}

// NewApplication wires every component from cfg. The logger must already be
// initialized; telemetry is set up here.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, contracts.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
	}
	a.initializeServices()
	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices builds the hub, job queue and services
func (a *Application) initializeServices() {
	hub := ws.NewHub(a.Logger)
	a.WebSocketHub = hub

	a.JobQueue = operations.NewJobQueue(a.Logger, hub)

	fm := files.NewManager(files.Options{
		CSVBOM:         a.Config.Output.CSVBOM,
		SheetNameLimit: a.Config.Output.SheetNameLimit,
	})
	sp := splitter.NewSplitter(fm, splitter.Options{InvalidRowsName: a.Config.Output.InvalidRowsName}, a.Logger)

	// operation log lines reach the browser and the structured log
	reporter := operations.MultiReporter{operations.NewSlogReporter(a.Logger), hub}
	a.WorkspaceService = services.NewWorkspaceService(fm, sp, a.JobQueue, reporter, a.Logger)

	a.HealthService = services.NewHealthService(services.BuildInfo{
		Version:   contracts.Version,
		BuildTime: contracts.BuildTime,
		BuildID:   contracts.GitCommit,
	}, a.WorkspaceService, hub, a.Config.Output.DefaultDir, a.Logger)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// RequestID first; the websocket route must not have its writer wrapped
	r.Use(customMiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Config.Server.AllowedOrigins, a.Logger))
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		if a.Config.Telemetry.Tracing {
			r.Use(customMiddleware.Tracing)
		}
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Server.AllowedOrigins,
		}))
		if a.Config.Server.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Server.RateLimit.RPS,
				a.Config.Server.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.MaxBodySize(customMiddleware.DefaultMaxBodyBytes))
		r.Use(customMiddleware.ContentTypeJSON)

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Get("/stats", healthHandler.Stats)

		r.Mount("/dataset", handlers.NewDatasetHandler(a.WorkspaceService, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/split", handlers.NewSplitHandler(a.WorkspaceService, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/tasks", handlers.NewTaskHandler(a.WorkspaceService, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/files", handlers.NewFilesHandler(files.NewDiscovery(a.Config.Output.DefaultDir), a.Logger, a.ErrorHandler).Routes())
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the hub and the HTTP server. A listener failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	a.WebSocketHub.Start()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("url", fmt.Sprintf("http://%s", a.Server.Addr)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	// a running split finishes writing its parts before exit
	if err := a.JobQueue.Stop(jobDrainTimeout); err != nil {
		a.Logger.ErrorContext(ctx, "Failed to stop job queue gracefully", slog.String("error", err.Error()))
	}
	a.WebSocketHub.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted or the listener fails
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.InfoContext(ctx, "Received shutdown signal")
	return a.Stop(ctx)
}
