package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"ctedash/internal/config"
	apierrors "ctedash/internal/errors"
	"ctedash/internal/feeds"
	"ctedash/internal/infrastructure"
	custommw "ctedash/internal/middleware"
	"ctedash/internal/services"
	handlers "ctedash/internal/transport/http"
	"ctedash/pkg/contracts/domain"
)

const AppName = "CTe Dash"

// BuildTime is set at compile time via -ldflags.
var BuildTime = ""

// Application wires configuration, services and the HTTP server together.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	Dashboard *services.DashboardService
	Auth      *services.AuthService
	Health    *services.HealthService

	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.AppMetrics

	refreshStop chan struct{}
}

// NewApplication loads configuration and builds the fully wired
// application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newApplication(cfg)
}

func newApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", infrastructure.ServiceVersion))

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := infrastructure.CreateAppMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	client := feeds.NewClient(cfg.Feeds.FetchTimeout, logger)
	loader := feeds.NewLoader(client, feeds.URLs{
		Ctes:     cfg.Feeds.CtesURL,
		Targets:  cfg.Feeds.TargetsURL,
		Calendar: cfg.Feeds.CalendarURL,
		Users:    cfg.Feeds.UsersURL,
	}, logger)

	fallbackDays := domain.FixedDays{
		Total:   cfg.Period.TotalDays,
		Elapsed: cfg.Period.ElapsedDays,
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Dashboard:     services.NewDashboardService(loader, fallbackDays, logger, metrics),
		Auth:          services.NewAuthService(loader, logger, metrics),
		errorHandler:  apierrors.NewErrorHandler(logger, false),
		metrics:       metrics,
		refreshStop:   make(chan struct{}),
	}
	app.Health = services.NewHealthService(infrastructure.ServiceVersion, BuildTime, app.Dashboard, logger)

	app.setupRouter()
	app.createServer()
	return app, nil
}

// setupRouter configures the HTTP router with the full middleware chain.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := custommw.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("failed to create telemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.Compress(5))
		r.Use(custommw.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		if a.Config.Security.EnableCORS {
			r.Use(custommw.CORS(custommw.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
				MaxAge:         300,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		dashboardHandler := handlers.NewDashboardHandler(a.Dashboard, a.Logger, a.errorHandler)
		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)

		r.Route("/api", func(r chi.Router) {
			r.Mount("/dashboard", dashboardHandler.Routes())

			// Auth gets the body-capturing middleware so failed logins are
			// logged with their (password-redacted) input.
			authMW := apierrors.NewErrorMiddleware(a.errorHandler, a.Logger)
			r.With(authMW.Handler).Mount("/auth", handlers.NewAuthHandler(a.Auth, a.Logger, a.errorHandler).Routes())
			r.Mount("/export", handlers.NewExportHandler(a.Dashboard, a.Logger, a.errorHandler, a.metrics).Routes())
			r.Mount("/health", healthHandler.Routes())

			r.Post("/refresh", dashboardHandler.Refresh)
			r.Get("/version", healthHandler.Version)
		})

		r.NotFound(a.errorHandler.NotFound)
		r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)
	})

	// Metrics endpoint stays outside the middleware group.
	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start launches the HTTP server and the background feed refresh loop. The
// initial feed load happens here; failure is logged but does not abort
// startup since readiness gates traffic until a snapshot exists.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting server",
		slog.Int("port", a.Config.Server.Port),
		slog.Duration("refresh_interval", a.Config.Feeds.RefreshInterval))

	if err := a.Dashboard.Refresh(ctx); err != nil {
		a.Logger.WarnContext(ctx, "initial feed load failed, serving not ready",
			slog.String("error", err.Error()))
	}

	go a.refreshLoop(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "server started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// refreshLoop re-fetches the feeds on the configured interval until the
// application stops.
func (a *Application) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(a.Config.Feeds.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			refreshCtx, cancel := context.WithTimeout(ctx, a.Config.Feeds.FetchTimeout*2)
			if err := a.Dashboard.Refresh(refreshCtx); err != nil {
				a.Logger.WarnContext(refreshCtx, "scheduled refresh failed",
					slog.String("error", err.Error()))
			}
			cancel()
		case <-a.refreshStop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	close(a.refreshStop)

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogFile()
	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
