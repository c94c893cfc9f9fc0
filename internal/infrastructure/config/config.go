package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load
const EnvPrefix = "KEYVAULT"

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Log           LogConfig
	HTTP          HTTPConfig
	Search        SearchConfig
	Assistant     AssistantConfig
	Payment       PaymentConfig
	CatalogFeed   CatalogFeedConfig
	Notifications NotificationsConfig
	Scheduler     SchedulerConfig
	Swagger       SwaggerConfig
	Telemetry     TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address of the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds settings to validate access tokens issued by the auth platform
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	// AdminRole is the role claim value that grants access to the admin API
	AdminRole string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// SwaggerConfig holds API documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool     // admin token required
	AllowedIPs  []string // IPs or CIDRs; empty allows all
}

// SearchConfig holds smart search limits and scoring weights.
// Zero weights fall back to the built-in defaults.
type SearchConfig struct {
	ProductFetchLimit  int
	SellerFetchLimit   int
	MaxProducts        int
	MaxSellers         int
	MaxCategories      int
	MaxRecommendations int
	MaxSuggestions     int
	Weights            map[string]float64
}

// AssistantConfig holds the hosted text-completion model used for query correction
type AssistantConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// SampleProducts is the number of product names sent as context
	SampleProducts int
}

// PaymentConfig holds payment gateway settings
type PaymentConfig struct {
	MercadoPago MercadoPagoConfig
	// IdempotencyTTL is how long processed webhook deliveries are remembered
	IdempotencyTTL time.Duration
}

// MercadoPagoConfig holds Mercado Pago credentials and endpoints
type MercadoPagoConfig struct {
	AccessToken     string
	WebhookSecret   string
	NotificationURL string
	APIBaseURL      string
	Timeout         time.Duration
}

// CatalogFeedConfig holds the legacy CSV catalog feed location
type CatalogFeedConfig struct {
	Source    string // "http" or "s3"
	URL       string
	Bucket    string
	Key       string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	CacheTTL  time.Duration
	MaxRows   int
}

// NotificationsConfig holds the admin live view settings
type NotificationsConfig struct {
	ChangeFeedEnabled bool
	Channel           string
	Capacity          int
	BacklogLimit      int
	HeartbeatInterval time.Duration
	ReconnectMin      time.Duration
	ReconnectMax      time.Duration
}

// SchedulerConfig holds the background maintenance jobs settings
type SchedulerConfig struct {
	Enabled    bool
	Workers    int
	JobTimeout time.Duration
	// RetryAttempts is how often a failed job is retried. Negative disables retries.
	RetryAttempts int
	RetryDelay    time.Duration
	// BacklogReconcileInterval reloads the admin notification backlog.
	// It is the only refresh path when the change feed is off.
	BacklogReconcileInterval time.Duration
	// FeedRefreshInterval reloads the catalog feed ahead of cache expiry.
	// Zero disables the job.
	FeedRefreshInterval time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings
	// Continuous profiling
	ProfilingEnabled  bool
	PyroscopeEndpoint string
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with KEYVAULT_ prefix (e.g., KEYVAULT_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("jwt.secret"),
			Issuer:    v.GetString("jwt.issuer"),
			Audience:  v.GetString("jwt.audience"),
			AdminRole: v.GetString("jwt.admin_role"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Search: SearchConfig{
			ProductFetchLimit:  v.GetInt("search.product_fetch_limit"),
			SellerFetchLimit:   v.GetInt("search.seller_fetch_limit"),
			MaxProducts:        v.GetInt("search.max_products"),
			MaxSellers:         v.GetInt("search.max_sellers"),
			MaxCategories:      v.GetInt("search.max_categories"),
			MaxRecommendations: v.GetInt("search.max_recommendations"),
			MaxSuggestions:     v.GetInt("search.max_suggestions"),
			Weights:            floatMap(v.GetStringMap("search.weights")),
		},
		Assistant: AssistantConfig{
			Enabled:        v.GetBool("assistant.enabled"),
			BaseURL:        v.GetString("assistant.base_url"),
			APIKey:         v.GetString("assistant.api_key"),
			Model:          v.GetString("assistant.model"),
			Timeout:        v.GetDuration("assistant.timeout"),
			SampleProducts: v.GetInt("assistant.sample_products"),
		},
		Payment: PaymentConfig{
			MercadoPago: MercadoPagoConfig{
				AccessToken:     v.GetString("payment.mercadopago.access_token"),
				WebhookSecret:   v.GetString("payment.mercadopago.webhook_secret"),
				NotificationURL: v.GetString("payment.mercadopago.notification_url"),
				APIBaseURL:      v.GetString("payment.mercadopago.api_base_url"),
				Timeout:         v.GetDuration("payment.mercadopago.timeout"),
			},
			IdempotencyTTL: v.GetDuration("payment.idempotency_ttl"),
		},
		CatalogFeed: CatalogFeedConfig{
			Source:    v.GetString("catalog_feed.source"),
			URL:       v.GetString("catalog_feed.url"),
			Bucket:    v.GetString("catalog_feed.bucket"),
			Key:       v.GetString("catalog_feed.key"),
			Region:    v.GetString("catalog_feed.region"),
			Endpoint:  v.GetString("catalog_feed.endpoint"),
			AccessKey: v.GetString("catalog_feed.access_key"),
			SecretKey: v.GetString("catalog_feed.secret_key"),
			CacheTTL:  v.GetDuration("catalog_feed.cache_ttl"),
			MaxRows:   v.GetInt("catalog_feed.max_rows"),
		},
		Notifications: NotificationsConfig{
			ChangeFeedEnabled: v.GetBool("notifications.change_feed_enabled"),
			Channel:           v.GetString("notifications.channel"),
			Capacity:          v.GetInt("notifications.capacity"),
			BacklogLimit:      v.GetInt("notifications.backlog_limit"),
			HeartbeatInterval: v.GetDuration("notifications.heartbeat_interval"),
			ReconnectMin:      v.GetDuration("notifications.reconnect_min"),
			ReconnectMax:      v.GetDuration("notifications.reconnect_max"),
		},
		Scheduler: SchedulerConfig{
			Enabled:                  !v.IsSet("scheduler.enabled") || v.GetBool("scheduler.enabled"),
			Workers:                  v.GetInt("scheduler.workers"),
			JobTimeout:               v.GetDuration("scheduler.job_timeout"),
			RetryAttempts:            v.GetInt("scheduler.retry_attempts"),
			RetryDelay:               v.GetDuration("scheduler.retry_delay"),
			BacklogReconcileInterval: v.GetDuration("scheduler.backlog_reconcile_interval"),
			FeedRefreshInterval:      v.GetDuration("scheduler.feed_refresh_interval"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeEndpoint: v.GetString("telemetry.pyroscope_endpoint"),
		},
	}

	applyDefaults(cfg)
	// API docs are served outside production unless configured explicitly
	if !v.IsSet("swagger.enabled") {
		cfg.Swagger.Enabled = cfg.App.Env != "production"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// floatMap converts a viper sub-map into float weights, skipping non-numeric values
func floatMap(raw map[string]any) map[string]float64 {
	out := make(map[string]float64, len(raw))
	for k, val := range raw {
		switch n := val.(type) {
		case float64:
			out[k] = n
		case int:
			out[k] = float64(n)
		case int64:
			out[k] = float64(n)
		}
	}
	return out
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "keyvault-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "keyvault"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "keyvault-auth"
	}
	if cfg.JWT.Audience == "" {
		cfg.JWT.Audience = "authenticated"
	}
	if cfg.JWT.AdminRole == "" {
		cfg.JWT.AdminRole = "admin"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 60
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// The storefront functions are called from browsers on any origin
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"authorization", "x-client-info", "apikey", "content-type", "x-request-id"}
	}
	if cfg.Search.ProductFetchLimit == 0 {
		cfg.Search.ProductFetchLimit = 100
	}
	if cfg.Search.SellerFetchLimit == 0 {
		cfg.Search.SellerFetchLimit = 50
	}
	if cfg.Search.MaxProducts == 0 {
		cfg.Search.MaxProducts = 10
	}
	if cfg.Search.MaxSellers == 0 {
		cfg.Search.MaxSellers = 5
	}
	if cfg.Search.MaxCategories == 0 {
		cfg.Search.MaxCategories = 5
	}
	if cfg.Search.MaxRecommendations == 0 {
		cfg.Search.MaxRecommendations = 4
	}
	if cfg.Search.MaxSuggestions == 0 {
		cfg.Search.MaxSuggestions = 5
	}
	if cfg.Assistant.BaseURL == "" {
		cfg.Assistant.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Assistant.Model == "" {
		cfg.Assistant.Model = "gpt-4o-mini"
	}
	if cfg.Assistant.Timeout == 0 {
		cfg.Assistant.Timeout = 3 * time.Second
	}
	if cfg.Assistant.SampleProducts == 0 {
		cfg.Assistant.SampleProducts = 20
	}
	if cfg.Payment.MercadoPago.APIBaseURL == "" {
		cfg.Payment.MercadoPago.APIBaseURL = "https://api.mercadopago.com"
	}
	if cfg.Payment.MercadoPago.Timeout == 0 {
		cfg.Payment.MercadoPago.Timeout = 30 * time.Second
	}
	if cfg.Payment.IdempotencyTTL == 0 {
		cfg.Payment.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.CatalogFeed.Source == "" {
		cfg.CatalogFeed.Source = "http"
	}
	if cfg.CatalogFeed.Region == "" {
		cfg.CatalogFeed.Region = "us-east-1"
	}
	if cfg.CatalogFeed.CacheTTL == 0 {
		cfg.CatalogFeed.CacheTTL = 5 * time.Minute
	}
	if cfg.CatalogFeed.MaxRows == 0 {
		cfg.CatalogFeed.MaxRows = 50
	}
	if cfg.Notifications.Channel == "" {
		cfg.Notifications.Channel = "table_changes"
	}
	if cfg.Notifications.Capacity == 0 {
		cfg.Notifications.Capacity = 100
	}
	if cfg.Notifications.BacklogLimit == 0 {
		cfg.Notifications.BacklogLimit = 50
	}
	if cfg.Notifications.HeartbeatInterval == 0 {
		cfg.Notifications.HeartbeatInterval = 30 * time.Second
	}
	if cfg.Notifications.ReconnectMin == 0 {
		cfg.Notifications.ReconnectMin = 10 * time.Second
	}
	if cfg.Notifications.ReconnectMax == 0 {
		cfg.Notifications.ReconnectMax = time.Minute
	}
	if cfg.Scheduler.Workers == 0 {
		cfg.Scheduler.Workers = 2
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Second
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 2
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 10 * time.Second
	}
	if cfg.Scheduler.BacklogReconcileInterval == 0 {
		cfg.Scheduler.BacklogReconcileInterval = 5 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "keyvault-backend"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.PyroscopeEndpoint == "" {
		cfg.Telemetry.PyroscopeEndpoint = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.CatalogFeed.Source {
	case "http", "s3":
	default:
		return fmt.Errorf("catalog_feed.source must be 'http' or 's3', got %q", c.CatalogFeed.Source)
	}

	if c.Assistant.Enabled && c.Assistant.APIKey == "" {
		return fmt.Errorf("assistant.api_key is required when assistant.enabled is true")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Payment.MercadoPago.AccessToken == "" {
			return fmt.Errorf("payment.mercadopago.access_token is required in production")
		}
		if c.Payment.MercadoPago.WebhookSecret == "" {
			return fmt.Errorf("payment.mercadopago.webhook_secret is required in production")
		}
		if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
