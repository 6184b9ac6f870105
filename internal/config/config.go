// Package config loads application configuration from environment variables
// with defaults and validation. It covers the HTTP server, logging, the
// SQLite store, rate limiting, the response scheduler, outbound
// notifications and tracing.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // SCHEDULER_TIMEZONE must resolve on hosts without zoneinfo
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	Environment string  // OTEL_DEPLOYMENT_ENVIRONMENT (e.g. "staging")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// SchedulerConfig controls deferred response batches.
type SchedulerConfig struct {
	MinLeadTime   time.Duration  // SCHEDULER_MIN_LEAD_TIME
	PollInterval  time.Duration  // SCHEDULER_POLL_INTERVAL
	PollBatch     int            // SCHEDULER_POLL_BATCH
	SweepInterval time.Duration  // SCHEDULER_SWEEP_INTERVAL
	Retention     time.Duration  // SCHEDULE_RETENTION
	FireTimeout   time.Duration  // SCHEDULER_FIRE_TIMEOUT
	StaleAfter    time.Duration  // SCHEDULER_STALE_AFTER
	Location      *time.Location // SCHEDULER_TIMEZONE
}

// NotifyConfig selects outbound notification channels. A channel is off
// when its address or sender is empty.
type NotifyConfig struct {
	Log bool // NOTIFY_LOG

	RedisAddr     string // NOTIFY_REDIS_ADDR
	RedisPassword string // NOTIFY_REDIS_PASSWORD
	RedisDB       int    // NOTIFY_REDIS_DB
	RedisChannel  string // NOTIFY_REDIS_CHANNEL

	AWSRegion  string // NOTIFY_AWS_REGION
	SESFrom    string // NOTIFY_SES_FROM
	SNSEnabled bool   // NOTIFY_SNS_ENABLED
	QueueSize  int    // NOTIFY_QUEUE_SIZE
}

// RedisEnabled reports whether events are published to Redis.
func (n NotifyConfig) RedisEnabled() bool { return n.RedisAddr != "" }

// SESEnabled reports whether reviewers are e-mailed.
func (n NotifyConfig) SESEnabled() bool { return n.AWSRegion != "" && n.SESFrom != "" }

// AWSEnabled reports whether any AWS-backed channel is on.
func (n NotifyConfig) AWSEnabled() bool {
	return n.AWSRegion != "" && (n.SESFrom != "" || n.SNSEnabled)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DBPath string // SQLite path

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	Scheduler SchedulerConfig
	Notify    NotifyConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		DBPath: getenv("DB_PATH", "servisbet.db"),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		Scheduler: SchedulerConfig{
			MinLeadTime:   getdur("SCHEDULER_MIN_LEAD_TIME", time.Hour),
			PollInterval:  getdur("SCHEDULER_POLL_INTERVAL", time.Minute),
			PollBatch:     getint("SCHEDULER_POLL_BATCH", 50),
			SweepInterval: getdur("SCHEDULER_SWEEP_INTERVAL", 24*time.Hour),
			Retention:     getdur("SCHEDULE_RETENTION", 30*24*time.Hour),
			FireTimeout:   getdur("SCHEDULER_FIRE_TIMEOUT", 5*time.Minute),
			StaleAfter:    getdur("SCHEDULER_STALE_AFTER", 10*time.Minute),
		},

		Notify: NotifyConfig{
			Log:           getbool("NOTIFY_LOG", true),
			RedisAddr:     getenv("NOTIFY_REDIS_ADDR", ""),
			RedisPassword: getenv("NOTIFY_REDIS_PASSWORD", ""),
			RedisDB:       getint("NOTIFY_REDIS_DB", 0),
			RedisChannel:  getenv("NOTIFY_REDIS_CHANNEL", "servisbet:events"),
			AWSRegion:     getenv("NOTIFY_AWS_REGION", ""),
			SESFrom:       getenv("NOTIFY_SES_FROM", ""),
			SNSEnabled:    getbool("NOTIFY_SNS_ENABLED", false),
			QueueSize:     getint("NOTIFY_QUEUE_SIZE", 256),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "servisbet"),
			Environment: getenv("OTEL_DEPLOYMENT_ENVIRONMENT", ""),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	tz := getenv("SCHEDULER_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return cfg, fmt.Errorf("SCHEDULER_TIMEZONE %q: %w", tz, err)
	}
	cfg.Scheduler.Location = loc

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if err := cfg.Scheduler.validate(); err != nil {
		return cfg, err
	}
	if cfg.Notify.RedisDB < 0 {
		return cfg, errors.New("NOTIFY_REDIS_DB must be >= 0")
	}
	if cfg.Notify.QueueSize < 1 {
		return cfg, errors.New("NOTIFY_QUEUE_SIZE must be >= 1")
	}
	if cfg.Notify.SNSEnabled && cfg.Notify.AWSRegion == "" {
		return cfg, errors.New("NOTIFY_SNS_ENABLED requires NOTIFY_AWS_REGION")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

func (s SchedulerConfig) validate() error {
	switch {
	case s.MinLeadTime <= 0:
		return errors.New("SCHEDULER_MIN_LEAD_TIME must be > 0")
	case s.PollInterval <= 0:
		return errors.New("SCHEDULER_POLL_INTERVAL must be > 0")
	case s.PollBatch < 1:
		return errors.New("SCHEDULER_POLL_BATCH must be >= 1")
	case s.SweepInterval <= 0:
		return errors.New("SCHEDULER_SWEEP_INTERVAL must be > 0")
	case s.Retention <= 0:
		return errors.New("SCHEDULE_RETENTION must be > 0")
	case s.FireTimeout <= 0:
		return errors.New("SCHEDULER_FIRE_TIMEOUT must be > 0")
	case s.StaleAfter <= s.FireTimeout:
		return errors.New("SCHEDULER_STALE_AFTER must be greater than SCHEDULER_FIRE_TIMEOUT")
	}
	return nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
