package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/resensebox/Mindful-Libraries-sub000/core/db"
)

type Config struct {
	Catalog CatalogConfig
	LLM     LLMConfig
	Audit   AuditConfig
	Session SessionConfig
	OTel    OTelConfig
	Env     string
	Port    string
	TopK    int
	DB      db.Config
}

type CatalogConfig struct {
	SourceURL   string // http(s)://, file:// or postgres://
	Credentials string // bearer token for http sources; never logged
	TTL         time.Duration
	Timeout     time.Duration
}

type LLMConfig struct {
	Provider    string // "openai" or "anthropic"
	APIKey      string
	BaseURL     string // Optional: for custom endpoints
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type AuditConfig struct {
	SinkURL     string // sqlite://, postgres://, redis://, or "none"
	RedisStream string
	Timeout     time.Duration
}

type SessionConfig struct {
	IdleTimeout   time.Duration
	RatePerMinute int
	SecureCookie  bool
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

// Load reads configuration from the environment. In development the
// service-specific .env file (.env.server, .env.cli) is loaded first, falling
// back to .env.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("APP_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	env := getEnv("APP_ENV", "development")
	cfg := Config{
		Env:  env,
		Port: getEnv("PORT", "8080"),
		TopK: getEnvInt("TOP_K", 3),
		DB: db.Config{
			MaxConns: getEnvInt32("DB_MAX_CONNS", 4),
			MinConns: getEnvInt32("DB_MIN_CONNS", 1),
		},
		Catalog: CatalogConfig{
			SourceURL:   getEnv("CATALOG_SOURCE_URL", ""),
			Credentials: getEnv("CATALOG_CREDENTIALS", ""),
			TTL:         getEnvSeconds("CATALOG_TTL_SECONDS", 300),
			Timeout:     getEnvSeconds("CATALOG_TIMEOUT_SECONDS", 10),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			APIKey:      getEnv("LLM_API_KEY", ""),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Model:       getEnv("LLM_MODEL", ""), // empty selects the provider default
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 256),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
			Timeout:     getEnvSeconds("LLM_TIMEOUT_SECONDS", 30),
		},
		Audit: AuditConfig{
			SinkURL:     getEnv("AUDIT_SINK_URL", "sqlite://audit.db"),
			RedisStream: getEnv("AUDIT_REDIS_STREAM", "mindful_submissions"),
			Timeout:     getEnvSeconds("AUDIT_TIMEOUT_SECONDS", 5),
		},
		Session: SessionConfig{
			IdleTimeout:   time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 60)) * time.Minute,
			RatePerMinute: getEnvInt("SESSION_RATE_PER_MINUTE", 20),
			SecureCookie:  env == "production",
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "mindful-libraries"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first missing or out-of-range setting.
func (c Config) Validate() error {
	if c.Catalog.SourceURL == "" {
		return fmt.Errorf("CATALOG_SOURCE_URL is required")
	}
	if !c.LLM.Enabled() {
		return fmt.Errorf("LLM_API_KEY is required and LLM_PROVIDER must be openai or anthropic")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	if c.Catalog.TTL <= 0 {
		return fmt.Errorf("CATALOG_TTL_SECONDS must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && (c.Provider == "openai" || c.Provider == "anthropic")
}

func (c AuditConfig) Enabled() bool {
	return c.SinkURL != "" && c.SinkURL != "none"
}

func (c SessionConfig) RateLimited() bool {
	return c.RatePerMinute > 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}
