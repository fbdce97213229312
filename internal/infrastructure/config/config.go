// Package config loads the storefront settings from config.toml and
// STORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. STORE_DATABASE_PASSWORD.
const EnvPrefix = "STORE"

// Config holds all application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Log          LogConfig          `mapstructure:"log"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Shop         ShopConfig         `mapstructure:"shop"`
	PostalLookup PostalLookupConfig `mapstructure:"postal_lookup"`
	Shipping     ShippingConfig     `mapstructure:"shipping"`
	Cart         CartConfig         `mapstructure:"cart"`
	Checkout     CheckoutConfig     `mapstructure:"checkout"`
	Handoff      HandoffConfig      `mapstructure:"handoff"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port" validate:"number"`
}

// DatabaseConfig holds database connection settings. Lifetimes are in minutes.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port" validate:"gt=0"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	SQLitePath      string `mapstructure:"sqlite_path"` // file path or ":memory:"
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time" validate:"gte=0"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"gt=0"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes" validate:"gt=0"`
	MaxBodySize      int64         `mapstructure:"max_body_size" validate:"gt=0"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
	// Order submissions allowed per client IP within SubmitRateWindow; 0 disables
	SubmitRateLimit  int           `mapstructure:"submit_rate_limit" validate:"gte=0"`
	SubmitRateWindow time.Duration `mapstructure:"submit_rate_window"`
	SwaggerEnabled   bool          `mapstructure:"swagger_enabled"`
}

// ShopConfig holds the seller's own settings
type ShopConfig struct {
	OriginPostalCode string   `mapstructure:"origin_postal_code"` // where parcels ship from
	WhatsAppNumber   string   `mapstructure:"whatsapp_number"`    // formatting allowed
	CountryCode      string   `mapstructure:"country_code" validate:"number"`
	LocalCities      []string `mapstructure:"local_cities"` // free local delivery
}

type PostalLookupConfig struct {
	BaseURL  string        `mapstructure:"base_url" validate:"url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type ShippingConfig struct {
	BaseURL     string        `mapstructure:"base_url" validate:"url"`
	Token       string        `mapstructure:"token"`
	UserAgent   string        `mapstructure:"user_agent"`
	Timeout     time.Duration `mapstructure:"timeout"`
	InsureItems bool          `mapstructure:"insure_items"`
	// Consecutive failures before the breaker opens, and how long it stays open
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `mapstructure:"breaker_open_timeout"`
}

type CartConfig struct {
	Store string        `mapstructure:"store" validate:"oneof=memory redis"`
	TTL   time.Duration `mapstructure:"ttl"`
}

type CheckoutConfig struct {
	GuardEnabled bool          `mapstructure:"guard_enabled"`
	GuardTTL     time.Duration `mapstructure:"guard_ttl"`
	QuoteTTL     time.Duration `mapstructure:"quote_ttl"` // how long calculated options stay selectable
}

type HandoffConfig struct {
	WebhookURL string        `mapstructure:"webhook_url" validate:"omitempty,url"` // empty logs handoffs only
	Timeout    time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig holds OpenTelemetry and Pyroscope settings
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"` // OTLP gRPC, e.g. "localhost:4317"
	SamplingRatio     float64       `mapstructure:"sampling_ratio" validate:"gte=0,lte=1"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	ProfilingEnabled  bool          `mapstructure:"profiling_enabled"`
	ProfilerAddress   string        `mapstructure:"profiler_address"` // e.g. "http://localhost:4040"
	ProfileTypes      []string      `mapstructure:"profile_types"`
}

var defaults = map[string]any{
	"app.name": "storefront",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "postgres",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.dbname":             "storefront",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "storefront.db",
	"database.max_open_conns":     10,
	"database.max_idle_conns":     2,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled": false,
	"redis.host":    "localhost",
	"redis.port":    6379,
	"redis.db":      0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":       15 * time.Second,
	"http.write_timeout":      30 * time.Second,
	"http.idle_timeout":       60 * time.Second,
	"http.shutdown_timeout":   10 * time.Second,
	"http.max_header_bytes":   1 << 20,
	"http.max_body_size":      1 << 20,
	"http.submit_rate_limit":  0,
	"http.submit_rate_window": time.Minute,

	"shop.origin_postal_code": "12010-000",
	"shop.whatsapp_number":    "(12) 98866-8359",
	"shop.country_code":       "55",
	"shop.local_cities":       []string{"Taubaté", "Tremembé"},

	"postal_lookup.base_url":  "https://viacep.com.br",
	"postal_lookup.timeout":   5 * time.Second,
	"postal_lookup.cache_ttl": 24 * time.Hour,

	"shipping.base_url":             "https://melhorenvio.com.br",
	"shipping.user_agent":           "storefront (contato@pattycroche.com.br)",
	"shipping.timeout":              10 * time.Second,
	"shipping.insure_items":         false,
	"shipping.breaker_max_failures": 5,
	"shipping.breaker_open_timeout": 30 * time.Second,

	"cart.store": "memory",
	"cart.ttl":   7 * 24 * time.Hour,

	"checkout.guard_enabled": true,
	"checkout.guard_ttl":     30 * time.Second,
	"checkout.quote_ttl":     2 * time.Hour,

	"handoff.timeout": 5 * time.Second,

	"telemetry.enabled":            false,
	"telemetry.collector_endpoint": "localhost:4317",
	"telemetry.sampling_ratio":     1.0,
	"telemetry.service_name":       "storefront",
	"telemetry.insecure":           false,
	"telemetry.db_trace_enabled":   false,
	"telemetry.metrics_enabled":    false,
	"telemetry.metrics_interval":   60 * time.Second,
	"telemetry.logs_enabled":       false,
	"telemetry.profiling_enabled":  false,
}

// Keys with no default still need an env binding for Unmarshal to see them.
var unsetKeys = []string{
	"database.password",
	"redis.password",
	"http.cors_allow_origins",
	"http.cors_allow_methods",
	"http.cors_allow_headers",
	"http.trusted_proxies",
	"http.swagger_enabled",
	"shipping.token",
	"handoff.webhook_url",
	"telemetry.profiler_address",
	"telemetry.profile_types",
}

// Load reads config.toml from the working directory or /app, then applies
// STORE_* environment overrides on top of the built-in defaults.
func Load() (*Config, error) {
	return load(viper.New(), ".", "/app")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range unsetKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		splitList,
	))
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if !v.IsSet("http.swagger_enabled") {
		cfg.HTTP.SwaggerEnabled = cfg.App.Env != "production"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitList turns comma separated env values into trimmed, non-empty slices.
func splitList(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeFor[[]string]() {
		return data, nil
	}
	var out []string
	for _, part := range strings.Split(data.(string), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

var checker = newChecker()

func newChecker() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		return name
	})
	return v
}

func (c *Config) validate() error {
	var errs []error
	if err := checker.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if !errors.As(err, &fields) {
			return err
		}
		for _, fe := range fields {
			errs = append(errs, fieldError(fe))
		}
	}
	return errors.Join(append(errs, c.crossChecks()...)...)
}

func fieldError(fe validator.FieldError) error {
	_, key, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("%s must be %s, got %q", key, strings.Join(strings.Fields(fe.Param()), " or "), fe.Value())
	case "gt":
		return fmt.Errorf("%s must be greater than %s", key, fe.Param())
	case "gte", "lte":
		return fmt.Errorf("%s is out of range, got %v", key, fe.Value())
	case "url":
		return fmt.Errorf("%s is not a valid URL", key)
	case "number":
		return fmt.Errorf("%s must contain digits only, got %q", key, fe.Value())
	}
	return fmt.Errorf("%s failed %s", key, fe.Tag())
}

func (c *Config) crossChecks() []error {
	var errs []error
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns))
	}
	if c.Cart.Store == "redis" && !c.Redis.Enabled {
		errs = append(errs, errors.New("cart.store=redis requires redis.enabled=true"))
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilerAddress == "" {
		errs = append(errs, errors.New("telemetry.profiler_address is required when profiling is enabled"))
	}
	if c.App.Env != "production" {
		return errs
	}
	if c.Database.Driver == "postgres" && c.Database.Password == "" {
		errs = append(errs, errors.New("database.password is required in production"))
	}
	if c.Shipping.Token == "" {
		errs = append(errs, errors.New("shipping.token is required in production"))
	}
	if slices.Contains(c.HTTP.CORSAllowOrigins, "*") {
		errs = append(errs, errors.New("http.cors_allow_origins cannot contain '*' in production"))
	}
	if c.HTTP.SwaggerEnabled {
		errs = append(errs, errors.New("http.swagger_enabled must be false in production"))
	}
	return errs
}

// DSN returns the postgres connection URL with credentials escaped
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}
