package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	DatabaseURL    string
	MigrateOnStart bool
	SeedDemoData   bool
	JWTSigningKey  string
	LogLevel       string

	// External notification gateway. Empty URL falls back to log delivery.
	NotifyGatewayURL string
	NotifyGatewayKey string

	// Reference request lifecycle tuning.
	ReferenceTTL    time.Duration
	ResendCooldown  time.Duration
	MaxSendAttempts int

	// Verification scoring tuning.
	VerifiedThreshold   int
	ProgressNotifyDelta int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:                ":8080",
		ReferenceTTL:        14 * 24 * time.Hour,
		ResendCooldown:      time.Hour,
		MaxSendAttempts:     3,
		VerifiedThreshold:   70,
		ProgressNotifyDelta: 10,
		LogLevel:            "info",
	}

	if addr := os.Getenv("REFCHAIN_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.MigrateOnStart = os.Getenv("DB_MIGRATE") == "true"
	cfg.SeedDemoData = os.Getenv("SEED_DEMO_DATA") == "true"
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	cfg.NotifyGatewayURL = os.Getenv("NOTIFY_GATEWAY_URL")
	cfg.NotifyGatewayKey = os.Getenv("NOTIFY_GATEWAY_KEY")

	cfg.JWTSigningKey = os.Getenv("JWT_SIGNING_KEY")
	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	if v := os.Getenv("REFERENCE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReferenceTTL = d
		}
	}
	if v := os.Getenv("RESEND_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ResendCooldown = d
		}
	}
	if v := os.Getenv("MAX_SEND_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSendAttempts = n
		}
	}
	if v := os.Getenv("VERIFIED_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			cfg.VerifiedThreshold = n
		}
	}

	return cfg
}
