// Package router assembles the gin engine: global middleware, the public
// marketplace functions at the root and the admin API under /api/v1.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/keyvault/backend/docs"
	"github.com/keyvault/backend/internal/infrastructure/auth"
	"github.com/keyvault/backend/internal/infrastructure/logger"
	"github.com/keyvault/backend/internal/interfaces/http/handler"
	"github.com/keyvault/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages versioned API route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup creates a route group for a specific domain
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Handlers are the HTTP handlers mounted by New. Nil handlers are skipped.
type Handlers struct {
	Search        *handler.SearchHandler
	Payment       *handler.PaymentHandler
	CatalogFeed   *handler.CatalogFeedHandler
	Notifications *handler.AdminNotificationHandler
	Health        *handler.HealthHandler
}

// Config holds everything New needs to build the engine
type Config struct {
	Handlers    Handlers
	JWTService  *auth.JWTService
	Logger      *zap.Logger
	Meter       metric.Meter
	RateLimiter *middleware.RateLimiter
	MaxBodySize int64
	// AdminCORS applies to /api/v1/admin. The public functions always use
	// middleware.PublicCORSConfig.
	AdminCORS      middleware.CORSConfig
	Tracing        middleware.TracingConfig
	Profiling      middleware.ProfilingConfig
	Swagger        middleware.SwaggerConfig
	TrustedProxies []string
}

// PublicPaths are the storefront and gateway functions served at the root
var PublicPaths = []string{
	"/smart-search",
	"/create-payment",
	"/check-payment-status",
	"/mercadopago-webhook",
	"/search-products",
}

// GatewayPaths are public paths called by payment providers. They are never
// rate limited: a throttled delivery would be retried by the provider as a
// failure.
var GatewayPaths = map[string]bool{
	"/mercadopago-webhook": true,
}

// New builds the gin engine with the global middleware stack and all routes
func New(cfg Config) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}
	engine.HandleMethodNotAllowed = true

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanEnricher(),
		middleware.HTTPMetrics(cfg.Meter, log),
		middleware.ProfilingWithConfig(cfg.Profiling),
		middleware.Secure(),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	if cfg.Handlers.Health != nil {
		engine.GET("/health", cfg.Handlers.Health.Health)
	}

	var docsAuth gin.HandlerFunc
	if cfg.JWTService != nil {
		docsAuth = middleware.AdminAuth(cfg.JWTService, log)
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, docsAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerPublic(engine, cfg)

	if cfg.JWTService != nil {
		NewRouter(engine).Register(adminGroup(cfg, log)).Setup()
	}

	return engine
}

func registerPublic(engine *gin.Engine, cfg Config) {
	cors := middleware.CORSWithConfig(middleware.PublicCORSConfig())
	gateway := engine.Group("/", cors)
	public := engine.Group("/", cors)
	if cfg.RateLimiter != nil {
		public.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	h := cfg.Handlers
	routes := map[string]gin.HandlerFunc{}
	if h.Search != nil {
		routes["/smart-search"] = h.Search.SmartSearch
	}
	if h.Payment != nil {
		routes["/create-payment"] = h.Payment.CreatePayment
		routes["/check-payment-status"] = h.Payment.CheckPaymentStatus
		routes["/mercadopago-webhook"] = h.Payment.MercadoPagoWebhook
	}
	if h.CatalogFeed != nil {
		routes["/search-products"] = h.CatalogFeed.SearchProducts
	}

	for _, path := range PublicPaths {
		fn, ok := routes[path]
		if !ok {
			continue
		}
		group := public
		if GatewayPaths[path] {
			group = gateway
		}
		group.POST(path, fn)
		// Preflight is answered by the CORS middleware before this runs.
		group.OPTIONS(path, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}
}

func adminGroup(cfg Config, log *zap.Logger) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").Use(
		middleware.CORSWithConfig(cfg.AdminCORS),
		middleware.AdminAuth(cfg.JWTService, log),
	)

	if n := cfg.Handlers.Notifications; n != nil {
		admin.Group("notifications", "/notifications").
			GET("", n.List).
			GET("/stream", n.Stream).
			POST("/dismiss-all", n.DismissAll).
			POST("/:id/dismiss", n.Dismiss)
	}
	if f := cfg.Handlers.CatalogFeed; f != nil {
		admin.Group("catalog-feed", "/catalog-feed").
			POST("/refresh", f.Refresh)
	}
	return admin
}
