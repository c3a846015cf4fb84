package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Config struct {
	Addr        string
	DatabaseURL string
	Redis       RedisConfig

	JWTSigningKey string
	JWTTTL        time.Duration

	Oracle    OracleConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
	Docs      DocStoreConfig
}

// RedisConfig holds Redis connection parameters. An empty URL means Redis is
// not configured and callers should fall back to in-memory implementations.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// OracleConfig points at the external extraction service. The timeout bounds
// the single synchronous call made per verification request.
type OracleConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RateLimitConfig bounds request volume per client IP.
type RateLimitConfig struct {
	Window   time.Duration
	Max      int
	Disabled bool
}

// KafkaConfig configures the optional audit event mirror. Empty brokers
// disable publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// DocStoreConfig configures the S3-compatible document store.
type DocStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          getString("CERTIVA_ADDR", ":4000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: getString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTTTL:        getDuration("JWT_TTL", 24*time.Hour),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Oracle: OracleConfig{
			BaseURL: os.Getenv("EXTRACTION_SERVICE_URL"),
			Timeout: getDuration("EXTRACTION_TIMEOUT", 15*time.Second),
		},
		RateLimit: RateLimitConfig{
			Window:   getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			Max:      getInt("RATE_LIMIT_MAX", 100),
			Disabled: os.Getenv("RATE_LIMIT_DISABLED") == "true",
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   getString("AUDIT_TOPIC", "certiva.audit"),
		},
		Docs: DocStoreConfig{
			Endpoint:  os.Getenv("DOCSTORE_ENDPOINT"),
			AccessKey: os.Getenv("DOCSTORE_ACCESS_KEY"),
			SecretKey: os.Getenv("DOCSTORE_SECRET_KEY"),
			Bucket:    getString("DOCSTORE_BUCKET", "certificates"),
			UseSSL:    os.Getenv("DOCSTORE_USE_SSL") == "true",
		},
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
