package config

import (
	"os"

	"github.com/goliatone/go-errors"
)

// Config holds the process-wide settings read from the environment
type Config struct {
	HTTPAddr      string
	DatabaseDSN   string
	JWTSecret     string
	JWTIssuer     string
	OrderIDPrefix string
}

// Load reads configuration from the environment. The JWT signing secret
// has no fallback: an unset secret is a startup-time fatal
// misconfiguration, not something to paper over with a default.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:      ":" + getenv("PORT", "5000"),
		DatabaseDSN:   getenv("DATABASE_DSN", "file:shop.db?cache=shared&mode=rwc"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     getenv("JWT_ISSUER", "shop-api"),
		OrderIDPrefix: getenv("ORDER_ID_PREFIX", "order-"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must be set", errors.CategoryOperation).
			WithTextCode("MISSING_SIGNING_SECRET")
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
