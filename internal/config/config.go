// Package config loads the service configuration from environment variables.
// Every field has a default; malformed values and out-of-range settings are
// reported together by Load.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultModerationURL is the bad-words endpoint used when MODERATION_URL is unset.
const DefaultModerationURL = "https://api.apilayer.com/bad_words?censor_character=*"

// CORSConfig lists the browser origins allowed to call the API.
// An empty AllowedOrigins list permits every origin.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`
}

// SecurityConfig controls HSTS.
type SecurityConfig struct {
	EnableHSTS bool          `env:"ENABLE_HSTS"`
	HSTSMaxAge time.Duration `env:"HSTS_MAX_AGE" validate:"gte=0"`
}

// ModerationConfig points at the external censorship service.
type ModerationConfig struct {
	URL     string        `env:"MODERATION_URL" validate:"required,http_url"`
	APIKey  string        `env:"MODERATION_API_KEY"` // sent as the "apikey" header
	Timeout time.Duration `env:"MODERATION_TIMEOUT" validate:"gt=0"`
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"` // e.g. "otel:4317"
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName string  `env:"OTEL_SERVICE_NAME"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLER_ARG" validate:"gte=0,lte=1"`
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        `env:"PORT" validate:"required,numeric"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" validate:"gt=0"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" validate:"gt=0"`
	MaxHeaderBytes    int           `env:"MAX_HEADER_BYTES" validate:"gt=0"`
	GinMode           string        `env:"GIN_MODE" validate:"oneof=debug release test"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" validate:"gt=0"` // storage + moderation budget

	// Logging / docs
	LogLevel       string `env:"LOG_LEVEL" validate:"oneof=debug info warn error fatal panic"`
	LogPretty      bool   `env:"LOG_PRETTY"`
	SwaggerEnabled bool   `env:"SWAGGER_ENABLED"`
	GzipEnabled    bool   `env:"GZIP_ENABLED"`
	APIBasePath    string `env:"API_BASE_PATH" validate:"startswith=/"`

	// Storage
	DatabaseURL    string `env:"DATABASE_URL" validate:"required"` // postgres:// DSN or SQLite file
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" validate:"min=1"`

	Moderation ModerationConfig

	// Rate limiting; RateRPS 0 disables it.
	RateRPS   float64 `env:"RATE_RPS" validate:"gte=0"`
	RateBurst int     `env:"RATE_BURST" validate:"min=1"`

	CORS     CORSConfig
	Security SecurityConfig

	// How long a stored Idempotency-Key replays its response.
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" validate:"gt=0"`

	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if it is invalid.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the environment, applies defaults and validates the result.
// The returned error lists every offending variable.
func Load() (Config, error) {
	var e envReader
	cfg := Config{
		Port:              e.str("PORT", "3030"),
		ReadTimeout:       e.duration("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: e.duration("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      e.duration("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       e.duration("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    e.integer("MAX_HEADER_BYTES", 1<<20),
		GinMode:           ginMode(e.str("GIN_MODE", "release")),
		RequestTimeout:    e.duration("REQUEST_TIMEOUT", 10*time.Second),

		LogLevel:       logLevel(e.str("LOG_LEVEL", "info")),
		LogPretty:      e.flag("LOG_PRETTY", false),
		SwaggerEnabled: e.flag("SWAGGER_ENABLED", false),
		GzipEnabled:    e.flag("GZIP_ENABLED", true),
		APIBasePath:    normalizeBasePath(e.str("API_BASE_PATH", "/")),

		DatabaseURL:    e.str("DATABASE_URL", "qa.db"),
		DBMaxOpenConns: e.integer("DB_MAX_OPEN_CONNS", 5),

		Moderation: ModerationConfig{
			URL:     e.str("MODERATION_URL", DefaultModerationURL),
			APIKey:  e.str("MODERATION_API_KEY", ""),
			Timeout: e.duration("MODERATION_TIMEOUT", 5*time.Second),
		},

		RateRPS:   e.number("RATE_RPS", 5),
		RateBurst: e.integer("RATE_BURST", 10),

		CORS: CORSConfig{AllowedOrigins: splitCSV(e.str("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: e.flag("ENABLE_HSTS", false),
			HSTSMaxAge: e.duration("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: e.duration("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     e.flag("OTEL_ENABLED", false),
			Endpoint:    e.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    e.flag("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: e.str("OTEL_SERVICE_NAME", "go-qa-backend"),
			SampleRatio: e.number("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}

	errs := e.errs
	if err := validate.Struct(cfg); err != nil {
		var fes validator.ValidationErrors
		if !errors.As(err, &fes) {
			return cfg, err
		}
		for _, fe := range fes {
			errs = append(errs, describe(fe))
		}
	}
	return cfg, errors.Join(errs...)
}

// IsPostgres reports whether DatabaseURL names a Postgres server rather than
// a SQLite file.
func (c Config) IsPostgres() bool {
	u := strings.ToLower(strings.TrimSpace(c.DatabaseURL))
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

// validate reports field errors under their environment variable names.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}()

func describe(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s must not be empty", fe.Field())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "http_url":
		return fmt.Errorf("%s must be an absolute http(s) URL", fe.Field())
	case "numeric":
		return fmt.Errorf("%s must be a port number", fe.Field())
	case "startswith":
		return fmt.Errorf("%s must start with %q", fe.Field(), fe.Param())
	case "gt":
		return fmt.Errorf("%s must be > %s", fe.Field(), fe.Param())
	case "gte", "min":
		return fmt.Errorf("%s must be >= %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Errorf("%s must be <= %s", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s failed %q", fe.Field(), fe.Tag())
	}
}

// envReader looks up variables and collects parse failures instead of
// silently falling back to the default.
type envReader struct{ errs []error }

func (e *envReader) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) fail(k, v, want string) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q is not a valid %s", k, v, want))
}

func (e *envReader) str(k, def string) string {
	if v, ok := e.lookup(k); ok {
		return v
	}
	return def
}

func (e *envReader) integer(k string, def int) int {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.fail(k, v, "integer")
		return def
	}
	return i
}

func (e *envReader) number(k string, def float64) float64 {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(k, v, "number")
		return def
	}
	return f
}

func (e *envReader) duration(k string, def time.Duration) time.Duration {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(k, v, "duration")
		return def
	}
	return d
}

func (e *envReader) flag(k string, def bool) bool {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	e.fail(k, v, "boolean")
	return def
}

// ginMode maps unknown modes to release.
func ginMode(m string) string {
	m = strings.ToLower(m)
	switch m {
	case "debug", "release", "test":
		return m
	}
	return "release"
}

func logLevel(l string) string {
	l = strings.ToLower(l)
	if l == "warning" {
		return "warn"
	}
	return l
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath ensures a leading '/' and strips trailing ones (except root).
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
