package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port        int
	LogLevel    string
	CORSOrigins []string

	// Backend services
	MerchantAPIURL string // merchant portal API: initiatives, transactions, consent, points of sale
	PaymentAPIURL  string // payment API: create / delete discount transactions
	PartyAPIURL    string // institutions registry

	// Portal URLs
	LoginURL        string
	LogoutURL       string
	MagicLinkDomain string // host used in https://<domain>/authorizationlink/<trxCode>

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL     time.Duration
	PageCacheTTL time.Duration

	// Session store
	RedisURL        string // empty: in-memory session store
	SessionStateTTL time.Duration

	// Observability
	OTLPEndpoint string

	// JWT
	JWTSecret string // empty: claims are decoded without signature verification
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:        getEnvInt("PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		MerchantAPIURL: getEnv("MERCHANT_API_URL", "http://localhost:8081/idpay/merchant/portal"),
		PaymentAPIURL:  getEnv("PAYMENT_API_URL", "http://localhost:8082/idpay/payment/qr-code/merchant"),
		PartyAPIURL:    getEnv("PARTY_API_URL", "http://localhost:8083/external/v1"),

		LoginURL:        getEnv("LOGIN_URL", "https://selfcare.pagopa.it/auth/login"),
		LogoutURL:       getEnv("LOGOUT_URL", "https://selfcare.pagopa.it/auth/logout"),
		MagicLinkDomain: getEnv("MAGIC_LINK_DOMAIN", "www.idpay.it"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL:     getEnvDuration("CACHE_TTL", 5*time.Minute),
		PageCacheTTL: getEnvDuration("PAGE_CACHE_TTL", 15*time.Second),

		RedisURL:        getEnv("REDIS_URL", ""),
		SessionStateTTL: getEnvDuration("SESSION_STATE_TTL", 8*time.Hour),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
