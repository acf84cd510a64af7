package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"penyusutan/internal/config"
	apierrors "penyusutan/internal/errors"
	"penyusutan/internal/infrastructure"
	"penyusutan/internal/middleware"
	"penyusutan/internal/services"
	handlers "penyusutan/internal/transport/http"
	contracts "penyusutan/pkg/contracts"
)

// compressLevel is the gzip level used for JSON and HTML responses.
const compressLevel = 5

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	FrontendFS    fs.FS

	errorHandler *apierrors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Sessions  *services.MemorySessionStore
	Pipeline  *services.Pipeline
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication loads the configuration, sets up logging and telemetry and
// wires every service. frontendFS may be nil.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger, frontendFS)
}

// New wires an application from an explicit configuration.
func New(cfg *config.Config, logger *slog.Logger, frontendFS fs.FS) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		FrontendFS:    frontendFS,
		errorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	a.initializeServices()
	if err := a.setupRouter(); err != nil {
		a.Services.Sessions.Close()
		_ = providers.Shutdown(context.Background())
		return nil, err
	}
	a.createServer()

	logger.Info("application initialized",
		slog.String("app", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port),
		slog.Bool("frontend", frontendFS != nil))

	return a, nil
}

// initializeServices creates the session store, pipeline and services
func (a *Application) initializeServices() {
	cfg := a.Config

	store := services.NewMemorySessionStore(services.StoreOptions{
		TTL:             cfg.Upload.SessionTTL,
		MaxSessions:     cfg.Upload.MaxSessions,
		CleanupInterval: cfg.Upload.CleanupInterval,
		OnEvict:         services.SessionEvictionRecorder(a.Metrics, a.Logger),
		Logger:          a.Logger,
	})

	pipelineCfg := services.NewPipelineConfig(cfg)
	pipelineCfg.Metrics = a.Metrics
	pipelineCfg.Tracer = a.OTelProviders.Tracer
	pipelineCfg.Logger = a.Logger
	pipeline := services.NewPipeline(pipelineCfg)

	a.Services = &ServiceContainer{
		Sessions:  store,
		Pipeline:  pipeline,
		Dashboard: services.NewDashboardService(pipeline, store, cfg.Upload.SessionTTL, a.Metrics, a.Logger),
		Health:    services.NewHealthService(contracts.Version, contracts.GetVersionInfo().BuildTime, store, a.Logger),
	}
}

// setupRouter builds the middleware chain and mounts every route.
// Order: RequestID, RealIP, OTel, Logger, Recoverer, then response shaping.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	otelMiddleware, err := middleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(otelMiddleware.Handler)
	r.Use(middleware.StructuredLogger(a.Logger))
	r.Use(middleware.Recoverer(a.Logger))
	r.Use(middleware.DefaultSecureHeaders().Handler)
	if a.Config.Security.EnableCORS {
		r.Use(middleware.CORS(a.getCORSConfig()))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}
	r.Use(chimw.Compress(compressLevel))

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	// Scraped outside the API group so the request timeout never applies.
	r.Handle(config.MetricsEndpoint, handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	a.setupHTMLRoutes(r)

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := middleware.NewValidator(a.Logger)
	dashboard := handlers.NewDashboardHandler(a.Services.Dashboard, validator, a.errorHandler, a.Logger,
		handlers.DashboardHandlerOptions{
			MaxUploadBytes: a.Config.Upload.MaxBytes,
			DefaultTopN:    a.Config.Dashboard.TopN,
		})
	health := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.NotFound(a.errorHandler.NotFound)
		r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

		r.Mount("/health", health.Routes())
		r.Get("/version", health.Version)

		r.Group(func(r chi.Router) {
			if a.Config.Server.RequestTimeout > 0 {
				r.Use(middleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			}
			r.Mount("/", dashboard.Routes())
		})
	})
}

// setupHTMLRoutes serves the embedded dashboard page
func (a *Application) setupHTMLRoutes(r chi.Router) {
	frontend := handlers.NewFrontendHandler(a.FrontendFS, a.Logger)

	r.Get("/", frontend.ServeIndex)
	r.Get("/index.html", frontend.ServeIndex)
	r.Get("/assets/*", frontend.ServeAsset)
	r.Get("/favicon.ico", frontend.ServeAsset)
}

// getCORSConfig builds the CORS policy from the security settings
func (a *Application) getCORSConfig() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			middleware.RequestIDHeader,
		},
		ExposedHeaders: []string{
			middleware.RequestIDHeader,
			"Content-Disposition",
			"Location",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts the
// application down.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "HTTP server listening", slog.String("addr", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		// The parent context is already done here.
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Start listens on the configured port and serves until ctx is cancelled.
func (a *Application) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Stop drains the server, closes the session store and flushes telemetry.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if err := a.Services.Sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("session store close error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("log file close error: %w", err))
	}
	return errors.Join(errs...)
}

// Run runs the application until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Start(ctx)
}
