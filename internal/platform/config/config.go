package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures service-level configuration. Business limits (document size
// ceiling, allowed content types, upstream timeout) are configurable so they
// never live as literals inside domain code.
type Config struct {
	Addr          string
	LogLevel      string
	AdminToken    string
	JWTSigningKey string

	PostgresDSN string
	RedisURL    string
	StoragePath string

	SMSGatewayURL   string
	SMSGatewayToken string
	PhoneRegion     string

	MaxDocumentBytes   int64
	AllowedContentType string
	UpstreamTimeout    time.Duration

	DeliveryOptions []string
	PaymentOptions  []string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:          envString("AGRILINK_ADDR", ":8080"),
		LogLevel:      envString("LOG_LEVEL", "info"),
		AdminToken:    envString("ADMIN_TOKEN", ""),
		JWTSigningKey: envString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),

		PostgresDSN: envString("POSTGRES_DSN", ""),
		RedisURL:    envString("REDIS_URL", ""),
		StoragePath: envString("STORAGE_PATH", "./data/documents"),

		SMSGatewayURL:   envString("SMS_GATEWAY_URL", ""),
		SMSGatewayToken: envString("SMS_GATEWAY_TOKEN", ""),
		PhoneRegion:     envString("PHONE_DEFAULT_REGION", "MM"),

		MaxDocumentBytes:   envInt64("MAX_DOCUMENT_BYTES", 10<<20),
		AllowedContentType: envString("ALLOWED_CONTENT_TYPE_PREFIX", "image/"),
		UpstreamTimeout:    envDuration("UPSTREAM_TIMEOUT", 10*time.Second),

		DeliveryOptions: envList("DELIVERY_OPTIONS", []string{"pickup", "courier", "postal"}),
		PaymentOptions:  envList("PAYMENT_OPTIONS", []string{"cash_on_delivery", "bank_transfer", "mobile_money"}),
	}
}

func envString(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
