package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string
	AdminToken  string

	// TrustedProxies are the peers whose X-Forwarded-For is honoured.
	TrustedProxies []netip.Prefix

	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Consent   ConsentConfig
	Directory DirectoryConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig selects PostgreSQL; an empty URL means the in-memory store.
// AutoMigrate applies the embedded schema on startup.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig enables the patient directory cache when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables audit forwarding when Brokers is set. With a
// database configured, events go through the audit outbox and are relayed
// every OutboxPollInterval; relayed rows are pruned after OutboxRetention.
type KafkaConfig struct {
	Brokers            string
	AuditTopic         string
	OutboxPollInterval time.Duration
	OutboxRetention    time.Duration
}

// ConsentConfig tunes the consent engine.
type ConsentConfig struct {
	SigningKey    string
	SweepInterval time.Duration
}

// DirectoryConfig points at the external patient directory. An empty URL
// selects the static directory seeded from SeedPatientIDs.
type DirectoryConfig struct {
	URL            string
	Timeout        time.Duration
	CacheTTL       time.Duration
	SeedPatientIDs []string
}

// RateLimitConfig bounds per-client access checks.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

const devSigningKey = "dev-consent-signing-key-change-in-production"

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
func FromEnv() (Server, error) {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	cfg := Server{
		Addr:        getEnv("CAREBRIDGE_ADDR", ":8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		AdminToken:  os.Getenv("ADMIN_API_TOKEN"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: getEnv("AUDIT_TOPIC", "carebridge.audit.consent"),
		},
		Consent: ConsentConfig{
			SigningKey: getEnv("CONSENT_SIGNING_KEY", devSigningKey),
		},
		Directory: DirectoryConfig{
			URL:            os.Getenv("PATIENT_DIRECTORY_URL"),
			SeedPatientIDs: splitList(os.Getenv("SEED_PATIENT_IDS")),
		},
	}

	var err error
	if cfg.Database.AutoMigrate, err = getBool("DATABASE_AUTO_MIGRATE", false); err != nil {
		return Server{}, err
	}
	if cfg.Consent.SweepInterval, err = getDuration("CONSENT_SWEEP_INTERVAL", time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.Directory.Timeout, err = getDuration("PATIENT_DIRECTORY_TIMEOUT", 2*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Directory.CacheTTL, err = getDuration("PATIENT_CACHE_TTL", 5*time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.Kafka.OutboxPollInterval, err = getDuration("AUDIT_OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Server{}, err
	}
	if cfg.Kafka.OutboxRetention, err = getDuration("AUDIT_OUTBOX_RETENTION", 7*24*time.Hour); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.RPS, err = getFloat("ACCESS_RATE_LIMIT_RPS", 50); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.Burst, err = getInt("ACCESS_RATE_LIMIT_BURST", 100); err != nil {
		return Server{}, err
	}

	for _, raw := range splitList(os.Getenv("TRUSTED_PROXIES")) {
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return Server{}, fmt.Errorf("parse TRUSTED_PROXIES: %w", err)
		}
		cfg.TrustedProxies = append(cfg.TrustedProxies, prefix)
	}

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the process cannot run with.
func (s Server) Validate() error {
	if s.Consent.SweepInterval <= 0 {
		return fmt.Errorf("CONSENT_SWEEP_INTERVAL must be positive")
	}
	if s.Kafka.OutboxPollInterval <= 0 {
		return fmt.Errorf("AUDIT_OUTBOX_POLL_INTERVAL must be positive")
	}
	if s.RateLimit.RPS <= 0 || s.RateLimit.Burst <= 0 {
		return fmt.Errorf("access rate limit must be positive")
	}
	if s.IsProduction() && s.Consent.SigningKey == devSigningKey {
		return fmt.Errorf("CONSENT_SIGNING_KEY must be set in production")
	}
	return nil
}

// IsProduction reports whether the process runs in production.
func (s Server) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
