package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores order-service settings.
type Config struct {
	Port         int
	DB           DB
	Kafka        Kafka
	AMQP         AMQP
	EventBus     EventBus
	Auth         Auth
	Orders       Orders
	Integrations Integrations
	RateLimit    RateLimit
	Redis        Redis
	Log          Log
	Debug        Debug
}

// DB holds Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		d.User, d.Pass, net.JoinHostPort(d.Host, d.Port), d.Name)
}

// Kafka holds broker settings for the order events topic.
type Kafka struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

// AMQP holds RabbitMQ publisher settings.
type AMQP struct {
	URL      string
	Exchange string
}

// EventBus selects the event publisher backend.
type EventBus string

const (
	EventBusKafka EventBus = "kafka"
	EventBusAMQP  EventBus = "amqp"
	EventBusNone  EventBus = "none"
)

// Auth holds bearer token verification settings.
type Auth struct {
	JWTSecret string
}

// Orders holds order service policy switches.
type Orders struct {
	OperationTimeout  time.Duration
	StrictTransitions bool
	BulkMaxItems      int
}

// Integrations holds external adapter settings.
type Integrations struct {
	Timeout       time.Duration
	RetrySchedule string
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
}

// RateLimitBackend selects where rate limit state lives.
type RateLimitBackend string

const (
	RateLimitMemory RateLimitBackend = "memory"
	RateLimitRedis  RateLimitBackend = "redis"
)

// RateLimit holds per-actor request limiting settings.
type RateLimit struct {
	Enabled    bool
	Backend    RateLimitBackend
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Redis holds redis client settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// LogBackend selects the logger implementation.
type LogBackend string

const (
	LogSlog LogBackend = "slog"
	LogZap  LogBackend = "zap"
)

// Log holds logger settings.
type Log struct {
	Level   string
	Backend LogBackend
}

// Debug toggles operator-only diagnostics.
type Debug struct {
	Pprof bool
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := Defaults()
	r := envReader{}

	cfg.Port = r.int("PORT", cfg.Port)

	cfg.DB.Host = r.str("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = r.str("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = r.str("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = r.str("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = r.str("POSTGRES_DB", cfg.DB.Name)
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		r.fail("POSTGRES_PORT", cfg.DB.Port, err)
	}

	cfg.Kafka.Brokers = r.list("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.Topic = r.str("KAFKA_ORDER_EVENTS_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.ConsumerGroup = r.str("KAFKA_CONSUMER_GROUP", cfg.Kafka.ConsumerGroup)

	cfg.AMQP.URL = r.str("AMQP_URL", cfg.AMQP.URL)
	cfg.AMQP.Exchange = r.str("AMQP_EXCHANGE", cfg.AMQP.Exchange)
	cfg.EventBus = EventBus(strings.ToLower(r.str("EVENT_BUS", string(cfg.EventBus))))

	cfg.Auth.JWTSecret = r.str("JWT_SECRET", cfg.Auth.JWTSecret)

	cfg.Orders.OperationTimeout = r.duration("ORDERS_OPERATION_TIMEOUT", cfg.Orders.OperationTimeout)
	cfg.Orders.StrictTransitions = r.bool("ORDERS_STRICT_TRANSITIONS", cfg.Orders.StrictTransitions)
	cfg.Orders.BulkMaxItems = r.int("BULK_ASSIGN_MAX_ITEMS", cfg.Orders.BulkMaxItems)

	cfg.Integrations.Timeout = r.duration("INTEGRATION_TIMEOUT", cfg.Integrations.Timeout)
	cfg.Integrations.RetrySchedule = r.str("INTEGRATION_RETRY_SCHEDULE", cfg.Integrations.RetrySchedule)
	cfg.Integrations.MaxAttempts = r.int("INTEGRATION_MAX_ATTEMPTS", cfg.Integrations.MaxAttempts)
	cfg.Integrations.BaseDelay = r.duration("INTEGRATION_BASE_DELAY", cfg.Integrations.BaseDelay)
	cfg.Integrations.MaxDelay = r.duration("INTEGRATION_MAX_DELAY", cfg.Integrations.MaxDelay)

	cfg.RateLimit.Enabled = r.bool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.Backend = RateLimitBackend(strings.ToLower(r.str("RATE_LIMIT_BACKEND", string(cfg.RateLimit.Backend))))
	cfg.RateLimit.Rate = r.float("RATE_LIMIT_RATE", cfg.RateLimit.Rate)
	cfg.RateLimit.Burst = r.int("RATE_LIMIT_BURST", cfg.RateLimit.Burst)
	cfg.RateLimit.TTL = r.duration("RATE_LIMIT_TTL", cfg.RateLimit.TTL)
	cfg.RateLimit.MaxBuckets = r.int("RATE_LIMIT_MAX_BUCKETS", cfg.RateLimit.MaxBuckets)

	cfg.Redis.Addr = r.str("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = r.str("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = r.int("REDIS_DB", cfg.Redis.DB)

	cfg.Log.Level = r.str("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Backend = LogBackend(strings.ToLower(r.str("LOG_BACKEND", string(cfg.Log.Backend))))

	cfg.Debug.Pprof = r.bool("DEBUG_PPROF", cfg.Debug.Pprof)

	if r.err != nil {
		return nil, r.err
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.EventBus {
	case EventBusKafka, EventBusAMQP, EventBusNone:
	default:
		return fmt.Errorf("invalid EVENT_BUS: %q", c.EventBus)
	}
	if c.Orders.OperationTimeout <= 0 {
		return fmt.Errorf("invalid ORDERS_OPERATION_TIMEOUT: %s", c.Orders.OperationTimeout)
	}
	if c.Orders.BulkMaxItems <= 0 {
		return fmt.Errorf("invalid BULK_ASSIGN_MAX_ITEMS: %d", c.Orders.BulkMaxItems)
	}
	if c.Integrations.Timeout <= 0 || c.Integrations.MaxAttempts <= 0 {
		return fmt.Errorf("invalid integration settings: timeout=%s attempts=%d",
			c.Integrations.Timeout, c.Integrations.MaxAttempts)
	}
	switch c.RateLimit.Backend {
	case RateLimitMemory, RateLimitRedis:
	default:
		return fmt.Errorf("invalid RATE_LIMIT_BACKEND: %q", c.RateLimit.Backend)
	}
	switch c.Log.Backend {
	case LogSlog, LogZap:
	default:
		return fmt.Errorf("invalid LOG_BACKEND: %q", c.Log.Backend)
	}
	return nil
}

// envReader reads typed environment values and keeps the first parse error.
type envReader struct {
	err error
}

func (r *envReader) fail(key, raw string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
}

func (r *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *envReader) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *envReader) float(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return f
}

func (r *envReader) bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

func (r *envReader) list(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
