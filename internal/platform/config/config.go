package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Empty PostgresURL, RedisURL or
// KafkaBrokers select the in-memory / disabled backends so the binary runs
// with zero external services in development.
type Server struct {
	Addr          string
	JWTSigningKey string
	PostgresURL   string
	RedisURL      string
	KafkaBrokers  []string
	AuditTopic    string
	LedgerTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("VAULT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = strings.Split(v, ",")
	}

	topic := os.Getenv("AUDIT_TOPIC")
	if topic == "" {
		topic = "vault.audit"
	}

	ledgerTimeout := 5 * time.Second
	if v := os.Getenv("LEDGER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ledgerTimeout = d
		}
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		PostgresURL:   os.Getenv("POSTGRES_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  brokers,
		AuditTopic:    topic,
		LedgerTimeout: ledgerTimeout,
	}
}
