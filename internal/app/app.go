package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"clinicreport/internal/config"
	"clinicreport/internal/dataprocessing"
	apperrors "clinicreport/internal/errors"
	"clinicreport/internal/infrastructure"
	customMiddleware "clinicreport/internal/middleware"
	"clinicreport/internal/services"
	"clinicreport/internal/sources"
	handlers "clinicreport/internal/transport/http"
	"clinicreport/pkg/contracts/domain"
)

// BuildTime is set at link time with -ldflags "-X clinicreport/internal/app.BuildTime=..."
var BuildTime = "dev"

// Application is the report server container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	ReportService *services.ReportService
	HealthService *services.HealthService
	ErrorHandler  *apperrors.ErrorHandler
}

// Option customises NewApplication
type Option func(*options)

type options struct {
	source sources.Source
}

// WithSource replaces the configured record source
func WithSource(src sources.Source) Option {
	return func(o *options) { o.source = src }
}

// NewReportService builds the report pipeline from configuration. A nil src
// means the source named by cfg.Source.Kind.
func NewReportService(ctx context.Context, cfg *config.Config, providers *infrastructure.OTelProviders, logger *slog.Logger, src sources.Source) (*services.ReportService, error) {
	if src == nil {
		var err error
		src, err = sources.New(ctx, cfg.Source, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s source: %w", cfg.Source.Kind, err)
		}
	}

	aggCfg, err := dataprocessing.NewAggregatorConfig(cfg.Report)
	if err != nil {
		return nil, fmt.Errorf("invalid aggregation settings: %w", err)
	}
	aggregator := dataprocessing.NewAggregator(aggCfg, logger)

	return services.NewReportService(src, aggregator, cfg.Report, cfg.Source.Timeout, providers, logger)
}

// NewApplication wires the services, router and HTTP server
func NewApplication(ctx context.Context, cfg *config.Config, providers *infrastructure.OTelProviders, logger *slog.Logger, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	reportService, err := NewReportService(ctx, cfg, providers, logger, o.source)
	if err != nil {
		return nil, err
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		ReportService: reportService,
		HealthService: services.NewHealthService(config.AppVersion, cfg.Source.Kind, logger),
		ErrorHandler:  apperrors.NewErrorHandler(logger, false),
	}

	if err := app.setupRouter(); err != nil {
		return nil, err
	}
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.InfoContext(ctx, "application initialized",
		slog.String("version", config.AppVersion),
		slog.String("build_time", BuildTime),
		slog.String("source", cfg.Source.Kind),
		slog.Int("port", cfg.Server.Port))

	return app, nil
}

func (a *Application) setupRouter() error {
	defaultFormat := domain.ReportFormatLaTeX
	if len(a.Config.Report.Formats) > 0 {
		f, err := domain.ParseReportFormat(a.Config.Report.Formats[0])
		if err != nil {
			return apperrors.NewConfigError("invalid report format", err)
		}
		defaultFormat = f
	}

	r := chi.NewRouter()

	// RequestID -> Tracing -> Logger -> Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.Tracing(a.OTelProviders.Tracer))
	r.Use(customMiddleware.StructuredLogger(a.Logger, a.ReportService.Metrics()))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Handle("/metrics", a.OTelProviders.MetricsHandler())

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	params := customMiddleware.NewReportParams(a.ErrorHandler, defaultFormat)
	reportHandler := handlers.NewReportHandler(a.ReportService, params, a.Config.Report.BaseName, a.Logger, a.ErrorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)

		r.Group(func(r chi.Router) {
			if rl := a.Config.Server.RateLimit; rl.Enabled {
				r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.ErrorHandler, a.Logger).Handler)
			}
			r.Mount("/reports", reportHandler.Routes())
		})
	})

	a.Router = r
	return nil
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, listener)
}

// Serve serves HTTP on listener until ctx is done
func (a *Application) Serve(ctx context.Context, listener net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "server listening", slog.String("address", listener.Addr().String()))
		if err := a.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down server")
		return a.Stop()
	})

	return g.Wait()
}

// Stop shuts the server and telemetry down within the configured timeout
func (a *Application) Stop() error {
	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}

	if len(errs) == 0 {
		a.Logger.Info("server stopped")
	}
	return errors.Join(errs...)
}
