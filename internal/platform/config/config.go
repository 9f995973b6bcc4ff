package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// JWTAudience is the audience of applicant access tokens.
const JWTAudience = "examreg"

// Config is the full process configuration assembled from the environment.
type Config struct {
	Server       Server
	Database     DatabaseConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	Registration RegistrationConfig
	Lookup       LookupConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	AdminToken string
	JWT        JWTConfig
}

type JWTConfig struct {
	SigningKey string
	Issuer     string
}

// DatabaseConfig selects the Postgres store; an empty URL runs in memory.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	TxTimeout    time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the audit outbox relay when Brokers is non-empty.
type KafkaConfig struct {
	Brokers      []string
	AuditTopic   string
	PollInterval time.Duration
}

// RegistrationConfig holds the rules of the examination event.
type RegistrationConfig struct {
	// SequenceBase is the registration number below the first one issued.
	SequenceBase int
	// Location decides which calendar day "today" is for created dates and
	// lookup validity.
	Location *time.Location
	// MaxSubmitAttempts bounds retries when two submissions race for numbers.
	MaxSubmitAttempts int
}

type LookupConfig struct {
	CacheTTL time.Duration
}

// FromEnv loads an optional .env file and then reads EXAMREG_* variables so
// main stays lean.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(envOr("EXAMREG_TIMEZONE", "Asia/Seoul"))
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	cfg := &Config{
		Server: Server{
			Addr:       envOr("EXAMREG_ADDR", ":8080"),
			AdminToken: os.Getenv("EXAMREG_ADMIN_TOKEN"),
			JWT:        JWTFromEnv(),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("EXAMREG_DATABASE_URL"),
			MaxOpenConns: envInt("EXAMREG_DB_MAX_OPEN_CONNS", 20),
			TxTimeout:    envDuration("EXAMREG_DB_TX_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("EXAMREG_REDIS_URL"),
			PoolSize:     envInt("EXAMREG_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("EXAMREG_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("EXAMREG_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("EXAMREG_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("EXAMREG_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(os.Getenv("EXAMREG_KAFKA_BROKERS")),
			AuditTopic:   envOr("EXAMREG_KAFKA_AUDIT_TOPIC", "examreg.audit"),
			PollInterval: envDuration("EXAMREG_OUTBOX_POLL_INTERVAL", 2*time.Second),
		},
		Registration: RegistrationConfig{
			SequenceBase:      envInt("EXAMREG_SEQUENCE_BASE", 1000),
			Location:          loc,
			MaxSubmitAttempts: envInt("EXAMREG_MAX_SUBMIT_ATTEMPTS", 3),
		},
		Lookup: LookupConfig{
			CacheTTL: envDuration("EXAMREG_LOOKUP_CACHE_TTL", 10*time.Minute),
		},
	}

	if cfg.Server.AdminToken == "" {
		return nil, fmt.Errorf("EXAMREG_ADMIN_TOKEN is required")
	}
	return cfg, nil
}

// JWTFromEnv reads the token settings alone, for tools that issue tokens
// without running the server.
func JWTFromEnv() JWTConfig {
	return JWTConfig{
		SigningKey: envOr("EXAMREG_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Issuer:     envOr("EXAMREG_JWT_ISSUER", "examreg"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
