package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMigrationsDir      = "/migrations"
	defaultCacheTTL           = 10 * time.Minute
	defaultOutboxPollInterval = 2 * time.Second
	defaultOutboxBatchSize    = 50
)

type RateLimit struct {
	RPS   int
	Burst int
}

type Config struct {
	Port           string
	GRPCHealthPort string

	DatabaseURL   string
	MigrationsDir string
	RedisURL      string
	RabbitMQURL   string

	JWTPublicKeyPath string
	JWTIssuer        string
	JWTAudience      string

	RateLimitEnabled bool
	AnonRateLimit    RateLimit
	AuthRateLimit    RateLimit

	CacheTTL           time.Duration
	OutboxPollInterval time.Duration
	OutboxBatchSize    int32

	LogLevel string
}

// LoadDotEnv loads a .env file when present. It reports whether one was found.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	l := loader{getenv: getenv}

	cfg := &Config{
		Port:             l.required("PORT"),
		GRPCHealthPort:   getenv("GRPC_HEALTH_PORT"),
		DatabaseURL:      l.required("DATABASE_URL"),
		MigrationsDir:    l.withDefault("MIGRATIONS_DIR", defaultMigrationsDir),
		RedisURL:         l.required("REDIS_URL"),
		RabbitMQURL:      getenv("RABBITMQ_URL"),
		JWTPublicKeyPath: l.required("JWT_PUBLIC_KEY_PATH"),
		JWTIssuer:        l.required("JWT_ISSUER"),
		JWTAudience:      l.required("JWT_AUDIENCE"),
		RateLimitEnabled: l.boolean("RATE_LIMIT_ENABLED", true),
		AnonRateLimit: RateLimit{
			RPS:   l.positiveInt("RATE_LIMIT_ANON_RPS", 10),
			Burst: l.positiveInt("RATE_LIMIT_ANON_BURST", 20),
		},
		AuthRateLimit: RateLimit{
			RPS:   l.positiveInt("RATE_LIMIT_AUTH_RPS", 30),
			Burst: l.positiveInt("RATE_LIMIT_AUTH_BURST", 60),
		},
		CacheTTL:           l.duration("CACHE_TTL", defaultCacheTTL),
		OutboxPollInterval: l.duration("OUTBOX_POLL_INTERVAL", defaultOutboxPollInterval),
		OutboxBatchSize:    int32(l.positiveInt("OUTBOX_BATCH_SIZE", defaultOutboxBatchSize)),
		LogLevel:           l.withDefault("LOG_LEVEL", "INFO"),
	}

	if l.err != nil {
		return nil, l.err
	}
	return cfg, nil
}

type loader struct {
	getenv func(string) string
	err    error
}

func (l *loader) fail(err error) {
	if l.err == nil {
		l.err = err
	}
}

func (l *loader) required(key string) string {
	v := l.getenv(key)
	if v == "" {
		l.fail(fmt.Errorf("%s is not set", key))
	}
	return v
}

func (l *loader) withDefault(key, def string) string {
	if v := l.getenv(key); v != "" {
		return v
	}
	return def
}

func (l *loader) boolean(key string, def bool) bool {
	v := l.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.fail(fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return b
}

func (l *loader) positiveInt(key string, def int) int {
	v := l.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		l.fail(fmt.Errorf("invalid %s: must be a positive integer, got %q", key, v))
		return def
	}
	return n
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	v := l.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		l.fail(fmt.Errorf("invalid %s: must be a positive duration, got %q", key, v))
		return def
	}
	return d
}
