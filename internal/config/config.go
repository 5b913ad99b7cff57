package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultAppEnv          = "development"
	defaultDBPath          = "./dev.db"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultPricingTimeout  = 5 * time.Second
	defaultPricingDebounce = 300 * time.Millisecond
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv        string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	LogLevel      string

	// CatalogPath points at a JSON catalog that replaces the seeded tables.
	CatalogPath string

	PricingServiceURL string
	PricingTimeout    time.Duration
	PricingDebounce   time.Duration

	// TaxPercent is a flat example rate shown on quote summaries.
	TaxPercent float64
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables. Real environment
	// variables are never overwritten.
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:            strings.ToLower(os.Getenv("APP_ENV")),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		DBPath:            os.Getenv("DB_PATH"),
		Port:              os.Getenv("PORT"),
		LogLevel:          strings.ToLower(os.Getenv("LOG_LEVEL")),
		CatalogPath:       os.Getenv("CATALOG_PATH"),
		PricingServiceURL: strings.TrimRight(os.Getenv("PRICING_SERVICE_URL"), "/"),
		PricingTimeout:    durationEnv("PRICING_TIMEOUT", defaultPricingTimeout),
		PricingDebounce:   durationEnv("PRICING_DEBOUNCE", defaultPricingDebounce),
		TaxPercent:        percentEnv("TAX_PERCENT"),
	}

	if cfg.AppEnv == "" {
		cfg.AppEnv = defaultAppEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if cfg.AdminEmail == "" {
		log.Warn().Msg("ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Warn().Msg("SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}

// Logger builds the process logger: a console writer in development and
// JSON lines otherwise.
func (c Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if c.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

func percentEnv(key string) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 100 {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid percent, using 0")
		return 0
	}
	return v
}
