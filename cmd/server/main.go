package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/keyvault/backend/internal/application/catalog"
	notificationapp "github.com/keyvault/backend/internal/application/notification"
	paymentapp "github.com/keyvault/backend/internal/application/payment"
	searchapp "github.com/keyvault/backend/internal/application/search"
	notificationdomain "github.com/keyvault/backend/internal/domain/notification"
	searchdomain "github.com/keyvault/backend/internal/domain/search"
	"github.com/keyvault/backend/internal/infrastructure/assistant"
	"github.com/keyvault/backend/internal/infrastructure/auth"
	"github.com/keyvault/backend/internal/infrastructure/cache"
	"github.com/keyvault/backend/internal/infrastructure/changefeed"
	"github.com/keyvault/backend/internal/infrastructure/config"
	"github.com/keyvault/backend/internal/infrastructure/event"
	"github.com/keyvault/backend/internal/infrastructure/logger"
	paymentinfra "github.com/keyvault/backend/internal/infrastructure/payment"
	"github.com/keyvault/backend/internal/infrastructure/persistence"
	"github.com/keyvault/backend/internal/infrastructure/scheduler"
	"github.com/keyvault/backend/internal/infrastructure/storage"
	"github.com/keyvault/backend/internal/infrastructure/telemetry"
	"github.com/keyvault/backend/internal/interfaces/http/handler"
	"github.com/keyvault/backend/internal/interfaces/http/middleware"
	"github.com/keyvault/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//go:generate go run github.com/swaggo/swag/v2/cmd/swag@v2.0.0-rc5 init --dir ../.. --generalInfo cmd/server/main.go --output ../../docs --parseInternal

//	@title			Keyvault Marketplace API
//	@version		1.0
//	@description	Digital-goods marketplace backend: smart search, Mercado Pago payments, legacy catalog feed and the admin notification live view.

//	@contact.name	Keyvault Engineering
//	@contact.url	https://github.com/keyvault/backend

//	@host		localhost:8080
//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Platform access token with the admin role. Format: "Bearer {token}"

const meterName = "keyvault-backend"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic("Failed to load .env: " + err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	providers, err := telemetry.Setup(rootCtx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if providers.Logs.IsEnabled() {
		// Re-create the logger so every record is also exported over OTLP
		if otelLog, err := logger.New(logCfg, providers.Logs.ZapCore(logger.ParseLevel(cfg.Log.Level))); err == nil {
			log = otelLog
		} else {
			log.Warn("Failed to attach OTLP log core", zap.Error(err))
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting keyvault backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithIgnoreRecordNotFoundError(true),
	)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog, telemetry.DBTracing(cfg.Telemetry, log))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.DBName),
	)

	products := persistence.NewGormProductRepository(db.DB)
	sellers := persistence.NewGormSellerRepository(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB)
	backlog := persistence.NewGormBacklogRepository(db.DB)

	stores, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}

	var dismissals notificationdomain.DismissalStore = persistence.NewGormDismissalRepository(db.DB)
	if client := stores.Client(); client != nil {
		dismissals = cache.NewRedisDismissalStore(client)
	}

	var metrics *telemetry.MarketMetrics
	meter := providers.Meter.Meter(meterName)
	if providers.Meter.IsEnabled() {
		if metrics, err = telemetry.NewMarketMetrics(meter); err != nil {
			log.Warn("Failed to register market metrics", zap.Error(err))
		}
	}

	// Domain events
	bus := event.NewInMemoryEventBus(log)
	adminFeed := notificationapp.NewAdminFeedService(notificationapp.ServiceConfig{
		Backlog:      backlog,
		Dismissals:   dismissals,
		Capacity:     cfg.Notifications.Capacity,
		BacklogLimit: cfg.Notifications.BacklogLimit,
		Logger:       log,
	})
	adminFeed.SetMarketMetrics(metrics)
	bus.Subscribe(event.NewIdempotentHandler(adminFeed, stores.IdempotencyStore(), log), adminFeed.EventTypes()...)
	if err := bus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	gateway, err := paymentinfra.NewMercadoPagoAdapter(&paymentinfra.MercadoPagoConfig{
		AccessToken:     cfg.Payment.MercadoPago.AccessToken,
		WebhookSecret:   cfg.Payment.MercadoPago.WebhookSecret,
		NotificationURL: cfg.Payment.MercadoPago.NotificationURL,
		BaseURL:         cfg.Payment.MercadoPago.APIBaseURL,
		Timeout:         cfg.Payment.MercadoPago.Timeout,
	})
	if err != nil {
		log.Fatal("Failed to configure Mercado Pago", zap.Error(err))
	}
	payments := paymentapp.NewService(paymentapp.ServiceConfig{
		Gateway:         gateway,
		Verifier:        gateway,
		Products:        products,
		Orders:          orders,
		Events:          bus,
		Idempotency:     stores.IdempotencyStore(),
		IdempotencyTTL:  cfg.Payment.IdempotencyTTL,
		NotificationURL: cfg.Payment.MercadoPago.NotificationURL,
		Logger:          log,
	})
	payments.SetMarketMetrics(metrics)

	searcher := searchapp.NewService(searchapp.ServiceConfig{
		Products:  products,
		Sellers:   sellers,
		Suggester: newSuggester(cfg.Assistant, log),
		Weights:   searchapp.WeightsFromConfig(cfg.Search.Weights),
		Limits: searchdomain.Limits{
			Products:        cfg.Search.MaxProducts,
			Sellers:         cfg.Search.MaxSellers,
			Categories:      cfg.Search.MaxCategories,
			Recommendations: cfg.Search.MaxRecommendations,
			Suggestions:     cfg.Search.MaxSuggestions,
		},
		ProductFetch:   cfg.Search.ProductFetchLimit,
		SellerFetch:    cfg.Search.SellerFetchLimit,
		SampleProducts: cfg.Assistant.SampleProducts,
		Logger:         log,
	})
	searcher.SetMarketMetrics(metrics)

	feedSource, err := newFeedSource(rootCtx, &cfg.CatalogFeed, log)
	if err != nil {
		log.Fatal("Failed to configure catalog feed", zap.Error(err))
	}
	feed := catalogapp.NewFeedService(catalogapp.FeedServiceConfig{
		Source:   feedSource,
		CacheTTL: cfg.CatalogFeed.CacheTTL,
		MaxRows:  cfg.CatalogFeed.MaxRows,
		Logger:   log,
	})
	feed.SetMarketMetrics(metrics)

	seedCtx, cancelSeed := context.WithTimeout(rootCtx, 10*time.Second)
	if err := adminFeed.Seed(seedCtx); err != nil {
		log.Warn("Failed to seed admin notifications", zap.Error(err))
	}
	cancelSeed()

	listenerDone := make(chan struct{})
	if cfg.Notifications.ChangeFeedEnabled {
		listener := changefeed.NewListener(changefeed.Config{
			DSN:          cfg.Database.DSN(),
			Channel:      cfg.Notifications.Channel,
			ReconnectMin: cfg.Notifications.ReconnectMin,
			ReconnectMax: cfg.Notifications.ReconnectMax,
		}, adminFeed.HandleRowChange, adminFeed.Reseed, log)
		go func() {
			defer close(listenerDone)
			if err := listener.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Change feed listener stopped", zap.Error(err))
			}
		}()
	} else {
		close(listenerDone)
	}

	jobs, err := newMaintenanceScheduler(cfg, adminFeed, feed, log)
	if err != nil {
		log.Fatal("Failed to register maintenance jobs", zap.Error(err))
	}
	if err := jobs.Start(rootCtx); err != nil {
		log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
	}

	notifications := handler.NewAdminNotificationHandler(adminFeed,
		handler.WithSSELogger(log),
		handler.WithSSEHeartbeat(cfg.Notifications.HeartbeatInterval),
	)

	checks := []handler.HealthCheck{{
		Name: "database",
		Ping: func(context.Context) error { return db.Ping() },
	}}
	if client := stores.Client(); client != nil {
		checks = append(checks, handler.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}

	adminCORS := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		adminCORS.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		adminCORS.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		adminCORS.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	tracing := middleware.DefaultTracingConfig()
	tracing.ServiceName = cfg.Telemetry.ServiceName
	tracing.Enabled = cfg.Telemetry.Enabled
	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = providers.Profiler.IsEnabled()

	engine := router.New(router.Config{
		Handlers: router.Handlers{
			Search:        handler.NewSearchHandler(searcher),
			Payment:       handler.NewPaymentHandler(payments),
			CatalogFeed:   handler.NewCatalogFeedHandler(feed),
			Notifications: notifications,
			Health:        handler.NewHealthHandler(checks...),
		},
		JWTService:  auth.NewJWTService(cfg.JWT),
		Logger:      log,
		Meter:       meter,
		RateLimiter: limiter,
		MaxBodySize: cfg.HTTP.MaxBodySize,
		AdminCORS:   adminCORS,
		Tracing:     tracing,
		Profiling:   profiling,
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Open SSE streams would otherwise hold Shutdown until the deadline
	notifications.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if limiter != nil {
		limiter.Stop()
	}

	if err := jobs.Stop(ctx); err != nil {
		log.Warn("Failed to stop maintenance scheduler", zap.Error(err))
	}
	stop()
	<-listenerDone
	if err := bus.Stop(ctx); err != nil {
		log.Warn("Failed to stop event bus", zap.Error(err))
	}
	if err := stores.Close(); err != nil {
		log.Warn("Failed to close cache", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Failed to close database", zap.Error(err))
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Warn("Failed to flush telemetry", zap.Error(err))
	}

	log.Info("Server exited")
}

// newMaintenanceScheduler registers the periodic backlog reconciliation and,
// when configured, the catalog feed refresh
func newMaintenanceScheduler(cfg *config.Config, adminFeed *notificationapp.AdminFeedService, feed *catalogapp.FeedService, log *zap.Logger) (*scheduler.Scheduler, error) {
	jobs := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Enabled:           cfg.Scheduler.Enabled,
		MaxConcurrentJobs: cfg.Scheduler.Workers,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
	}, log.Named("scheduler"))

	err := jobs.Register(scheduler.Task{
		Name:     "notification-backlog-reconcile",
		Interval: cfg.Scheduler.BacklogReconcileInterval,
		Run: func(ctx context.Context) error {
			adminFeed.Reseed(ctx)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	if cfg.Scheduler.FeedRefreshInterval > 0 {
		err = jobs.Register(scheduler.Task{
			Name:       "catalog-feed-refresh",
			Interval:   cfg.Scheduler.FeedRefreshInterval,
			RunOnStart: true,
			Run:        feed.Refresh,
		})
		if err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

// newSuggester returns the hosted model client, or nil when query correction is off
func newSuggester(cfg config.AssistantConfig, log *zap.Logger) searchdomain.Suggester {
	if !cfg.Enabled {
		return nil
	}
	client, err := assistant.NewClient(assistant.Config{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		Model:          cfg.Model,
		Timeout:        cfg.Timeout,
		SampleProducts: cfg.SampleProducts,
	})
	if err != nil {
		log.Warn("Query correction disabled", zap.Error(err))
		return nil
	}
	return client
}

func newFeedSource(ctx context.Context, cfg *config.CatalogFeedConfig, log *zap.Logger) (catalogapp.FeedSource, error) {
	switch cfg.Source {
	case "s3":
		return storage.NewS3FeedSource(ctx, cfg, storage.WithLogger(log))
	case "http":
		if cfg.URL != "" {
			return storage.NewHTTPFeedSource(cfg.URL, 0), nil
		}
	}
	log.Warn("Catalog feed source not configured, serving an empty feed", zap.String("source", cfg.Source))
	return storage.NewStaticFeedSource(nil), nil
}
