// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, store paths, rate limiting, the SMS and
// relay integrations, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ileco-one/triage-backend/internal/sysutil"
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

// AuthConfig defines the dashboard session and lockout settings.
type AuthConfig struct {
	AdminUser        string        // ADMIN_USER (seeded on first boot)
	AdminPassword    string        // ADMIN_PASSWORD
	SessionTTL       time.Duration // SESSION_TTL
	LockoutThreshold int           // LOCKOUT_THRESHOLD (failed logins)
	LockoutDuration  time.Duration // LOCKOUT_DURATION
}

// SMSConfig defines the outbound SMS provider settings. An empty BaseURL
// disables confirmations.
type SMSConfig struct {
	BaseURL string // SMS_PROVIDER_URL
	APIKey  string // SMS_API_KEY
	Sender  string // SMS_SENDER_NAME
}

// RelayConfig defines the sibling-node webhook settings. An empty BaseURL
// disables forwarding; the secret gates the inbound webhook.
type RelayConfig struct {
	BaseURL string // RELAY_BASE_URL
	Secret  string // RELAY_SECRET
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "triage-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
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

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Stores
	ComplaintDBPath string        // COMPLAINT_DB_PATH (SQLite)
	JobOrderDBPath  string        // JOBORDER_DB_PATH (SQLite)
	DBMaxConns      int           // per-store pool cap
	RequestTimeout  time.Duration // per-request store deadline

	// Realtime
	BroadcastInterval time.Duration // periodic stats_update cadence
	EventBuffer       int           // per-observer channel depth

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Dashboard auth
	Auth AuthConfig

	// Integrations
	SMS   SMSConfig
	Relay RelayConfig

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

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Stores
		ComplaintDBPath: getenv("COMPLAINT_DB_PATH", "triage.db"),
		JobOrderDBPath:  getenv("JOBORDER_DB_PATH", "joblist.db"),
		DBMaxConns:      getint("DB_MAX_CONNS", 10),
		RequestTimeout:  getdur("REQUEST_TIMEOUT", 10*time.Second),

		// Realtime
		BroadcastInterval: getdur("BROADCAST_INTERVAL", 30*time.Second),
		EventBuffer:       getint("EVENT_BUFFER", 16),

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

		// Dashboard auth
		Auth: AuthConfig{
			AdminUser:        getenv("ADMIN_USER", "admin"),
			AdminPassword:    getenv("ADMIN_PASSWORD", ""),
			SessionTTL:       getdur("SESSION_TTL", 12*time.Hour),
			LockoutThreshold: getint("LOCKOUT_THRESHOLD", 5),
			LockoutDuration:  getdur("LOCKOUT_DURATION", 15*time.Minute),
		},

		// Integrations
		SMS: SMSConfig{
			BaseURL: getenv("SMS_PROVIDER_URL", ""),
			APIKey:  getenv("SMS_API_KEY", ""),
			Sender:  getenv("SMS_SENDER_NAME", "ILECO"),
		},
		Relay: RelayConfig{
			BaseURL: getenv("RELAY_BASE_URL", ""),
			Secret:  getenv("RELAY_SECRET", ""),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "triage-backend"),
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
	if strings.TrimSpace(cfg.ComplaintDBPath) == "" {
		return cfg, errors.New("COMPLAINT_DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.JobOrderDBPath) == "" {
		return cfg, errors.New("JOBORDER_DB_PATH must not be empty")
	}
	if cfg.DBMaxConns < 1 {
		return cfg, errors.New("DB_MAX_CONNS must be >= 1")
	}
	if cfg.RequestTimeout <= 0 {
		return cfg, errors.New("REQUEST_TIMEOUT must be > 0")
	}
	if cfg.BroadcastInterval < time.Second {
		return cfg, errors.New("BROADCAST_INTERVAL must be >= 1s")
	}
	if cfg.EventBuffer < 1 {
		return cfg, errors.New("EVENT_BUFFER must be >= 1")
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
	if cfg.Auth.LockoutThreshold < 1 {
		return cfg, errors.New("LOCKOUT_THRESHOLD must be >= 1")
	}
	if cfg.Auth.SessionTTL <= 0 || cfg.Auth.LockoutDuration <= 0 {
		return cfg, errors.New("SESSION_TTL and LOCKOUT_DURATION must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- env helpers ----

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
		return sysutil.IsTruthy(v)
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
