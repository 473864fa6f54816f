package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
// It is constructed once at startup and injected into the components
// that need it; business logic never reads the environment directly.
type Config struct {
	AppEnv               string
	Port                 string
	PublicBaseURL        string
	UniPayBaseURL        string
	UniPayMerchantID     string
	UniPayAPIKey         string
	UniPayWebhookSecret  string
	UniPayTimeout        time.Duration
	CORSAllowedOrigins   []string
	CurrencyCode         string
	Locale               string
	BuyerEmailDomain     string
	OrderRateLimitMax    int
	OrderRateLimitWindow time.Duration
	DiagnosticsEnabled   bool
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:               valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                 valueOrDefault(k.String("PORT"), "8080"),
		PublicBaseURL:        valueOrDefault(k.String("PUBLIC_BASE_URL"), "https://betlemi10.com"),
		UniPayBaseURL:        valueOrDefault(k.String("UNIPAY_BASE_URL"), "https://apiv2.unipay.com"),
		UniPayMerchantID:     strings.TrimSpace(k.String("UNIPAY_MERCHANT_ID")),
		UniPayAPIKey:         strings.TrimSpace(k.String("UNIPAY_API_KEY")),
		UniPayWebhookSecret:  strings.TrimSpace(k.String("UNIPAY_WEBHOOK_SECRET")),
		UniPayTimeout:        parseDuration(k.String("UNIPAY_TIMEOUT"), "15s"),
		CORSAllowedOrigins:   splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		CurrencyCode:         valueOrDefault(k.String("CURRENCY_CODE"), "GEL"),
		Locale:               valueOrDefault(k.String("LOCALE"), "GE"),
		BuyerEmailDomain:     valueOrDefault(k.String("BUYER_EMAIL_DOMAIN"), "museum-space.ge"),
		OrderRateLimitMax:    parseInt(k.String("ORDER_RATE_LIMIT_MAX"), 10),
		OrderRateLimitWindow: parseDuration(k.String("ORDER_RATE_LIMIT_WINDOW"), "1m"),
		DiagnosticsEnabled:   parseBool(k.String("DIAGNOSTICS_ENABLED")),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{
			"https://betlemi10.com",
			"https://www.betlemi10.com",
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}

	if cfg.UniPayMerchantID == "" {
		return nil, errors.New("UNIPAY_MERCHANT_ID is required")
	}
	if cfg.UniPayAPIKey == "" {
		return nil, errors.New("UNIPAY_API_KEY is required")
	}
	if cfg.IsProduction() {
		if cfg.UniPayWebhookSecret == "" {
			return nil, errors.New("UNIPAY_WEBHOOK_SECRET is required in production")
		}
		if cfg.DiagnosticsEnabled {
			return nil, errors.New("DIAGNOSTICS_ENABLED must not be set in production")
		}
	}

	return cfg, nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
