package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"zignasa/internal/config"
	"zignasa/internal/confirmation"
	"zignasa/internal/db"
	"zignasa/internal/handoff"
	"zignasa/internal/health"
	"zignasa/internal/logger"
	"zignasa/internal/messaging"
	"zignasa/internal/metrics"
	"zignasa/internal/middleware"
	"zignasa/internal/payments"
	"zignasa/internal/registration"
	"zignasa/internal/team"
	"zignasa/internal/telemetry"
	"zignasa/internal/track"
	"zignasa/internal/verification"
	"zignasa/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	logger        *slog.Logger
	db            *bun.DB
	redis         *redis.Client
	publisher     messaging.Publisher
	meterProvider *sdkmetric.MeterProvider
}

// Deps are the stateful collaborators the HTTP routes are built on.
type Deps struct {
	Teams     team.Repository
	Handoffs  handoff.Store
	Publisher messaging.Publisher
	Pingers   map[string]health.Pinger
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

func New(ctx context.Context) (*App, error) {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "commit", GitCommit, "built", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env, "payments", cfg.Payments.Provider)

	a := &App{config: cfg, logger: slogLogger}

	if cfg.Telemetry.Enabled {
		a.meterProvider, err = telemetry.InitMeterProvider(ctx, ServiceName, Version, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize telemetry, metrics disabled", "error", err)
		}
	}
	meter := otel.Meter(ServiceName)

	m, err := metrics.New(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	if err := m.Health.RegisterServiceInfo(meter, ServiceName, Version, cfg.Env); err != nil {
		slogLogger.Warn("failed to register service info metric", "error", err)
	}

	a.db, err = db.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, a.db, team.Models(), team.MigrationStatements()...); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := m.Database.RegisterDB(a.db.DB, meter); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}

	pingers := map[string]health.Pinger{"database": a.db}

	var handoffs handoff.Store
	if cfg.Redis.Addr != "" {
		a.redis, err = handoff.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		handoffs = handoff.NewRedisStore(a.redis)
		pingers["redis"] = handoffs
		slogLogger.Info("handoff store: redis", "addr", cfg.Redis.Addr)
	} else {
		handoffs = handoff.NewMemoryStore()
		slogLogger.Warn("handoff store: in-memory, handoffs are lost on restart")
	}

	a.publisher, err = messaging.NewPublisher(cfg.Messaging, slogLogger, m.Messaging)
	if err != nil {
		slogLogger.Warn("failed to initialize event publisher, events are dropped", "driver", cfg.Messaging.Driver, "error", err)
		a.publisher = messaging.Nop{}
	}
	if p, ok := a.publisher.(health.Pinger); ok {
		pingers["messaging"] = p
	}

	a.router, err = NewRouter(cfg, Deps{
		Teams:     team.NewRepository(a.db, m),
		Handoffs:  handoffs,
		Publisher: a.publisher,
		Pingers:   pingers,
		Metrics:   m,
		Logger:    slogLogger,
	})
	if err != nil {
		return nil, err
	}

	slogLogger.Info("application initialized successfully")
	return a, nil
}

// NewRouter wires every handler of the service.
func NewRouter(cfg *config.Config, d Deps) (chi.Router, error) {
	catalog, err := track.NewCatalog(cfg.Tracks)
	if err != nil {
		return nil, err
	}
	gateway, err := payments.NewGateway(*cfg)
	if err != nil {
		return nil, err
	}
	renderer, err := web.NewRenderer(d.Logger)
	if err != nil {
		return nil, err
	}

	signer := handoff.NewSigner(cfg.Handoff.Secret, cfg.Handoff.TTL())
	secureCookies := strings.HasPrefix(cfg.Server.PublicURL, "https://")

	orchestrator := registration.NewOrchestrator(d.Teams, catalog, gateway, d.Handoffs, signer, d.Publisher, d.Logger, d.Metrics)
	verifyService := verification.NewService(d.Teams, catalog, gateway, d.Publisher, d.Logger, d.Metrics)

	var verifier verification.Verifier = verification.NewLocal(verifyService)
	if cfg.Verification.URL != "" {
		verifier = verification.NewClient(cfg.Verification.URL, cfg.Verification.Timeout())
		d.Logger.Info("verification endpoint: remote", "url", cfg.Verification.URL)
	}
	controller := confirmation.NewController(verifier, d.Handoffs, d.Logger, d.Metrics)

	router := chi.NewRouter()
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	health.NewHandler(d.Pingers, d.Metrics.Health).RegisterRoutes(router)
	web.NewHomeHandler(catalog, renderer).RegisterRoutes(router)
	registration.NewHandler(orchestrator, catalog, renderer, signer, secureCookies, d.Logger).RegisterRoutes(router)
	verification.NewHandler(verifyService, d.Logger).RegisterRoutes(router)
	confirmation.NewHandler(controller, d.Handoffs, signer, renderer, secureCookies, d.Logger).RegisterRoutes(router)

	if gateway.Name() == "stub" {
		payments.NewStubHandler(cfg.Payments.KeySecret, d.Teams, catalog, d.Logger).RegisterRoutes(router)
		d.Logger.Warn("stub payment gateway enabled, do not use in production")
	}

	return router, nil
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port, "public_url", a.config.Server.PublicURL)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		db.Close(a.db)
	}
	errs = append(errs, telemetry.Shutdown(ctx, a.meterProvider))
	return errors.Join(errs...)
}
