package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"kiosk/internal/core/domain/services"
	"kiosk/internal/pkg/errs"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	ReclaimModeSync  = "sync"
	ReclaimModeAsync = "async"
)

type Config struct {
	HTTPPort      string
	StorageDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	OrderTTL              time.Duration
	SweepSchedule         string
	SweepConcurrency      int
	SweepBatchSize        int
	SweepFailureBackoff   time.Duration
	ReclaimTimeout        time.Duration
	RetentionPolicy       services.RetentionPolicy
	CompletedRetention    time.Duration
	ReclaimMode           string
	ReclaimQueueSize      int
	MaxTransitionAttempts int

	AssetsDir         string
	PaymentSecret     string
	PaymentGatewayURL string
	DiagnosticReprint bool

	LogLevel slog.Level
	LogJSON  bool
}

// LoadConfig reads the configuration through getenv, applying defaults for
// unset variables. Every malformed value is reported, not just the first.
func LoadConfig(getenv func(string) string) (Config, error) {
	p := envParser{getenv: getenv}

	cfg := Config{
		HTTPPort:      p.str("HTTP_PORT", "8080"),
		StorageDriver: strings.ToLower(p.str("STORAGE_DRIVER", StorageDriverPostgres)),

		DBHost:     p.str("DB_HOST", "localhost"),
		DBPort:     p.str("DB_PORT", "5432"),
		DBUser:     p.str("DB_USER", ""),
		DBPassword: p.str("DB_PASSWORD", ""),
		DBName:     p.str("DB_NAME", ""),
		DBSslMode:  p.str("DB_SSLMODE", "disable"),

		OrderTTL:              p.duration("ORDER_TTL", 24*time.Hour),
		SweepSchedule:         p.str("SWEEP_SCHEDULE", "@every 1m"),
		SweepConcurrency:      p.integer("SWEEP_CONCURRENCY", 4),
		SweepBatchSize:        p.integer("SWEEP_BATCH_SIZE", 500),
		SweepFailureBackoff:   p.duration("SWEEP_FAILURE_BACKOFF", 10*time.Minute),
		ReclaimTimeout:        p.duration("RECLAIM_TIMEOUT", 30*time.Second),
		CompletedRetention:    p.duration("COMPLETED_RETENTION", 10*time.Minute),
		ReclaimMode:           strings.ToLower(p.str("RECLAIM_MODE", ReclaimModeAsync)),
		ReclaimQueueSize:      p.integer("RECLAIM_QUEUE_SIZE", 256),
		MaxTransitionAttempts: p.integer("MAX_TRANSITION_ATTEMPTS", 5),

		AssetsDir:         p.str("ASSETS_DIR", "./assets"),
		PaymentSecret:     p.str("PAYMENT_SECRET", ""),
		PaymentGatewayURL: p.str("PAYMENT_GATEWAY_URL", ""),
		DiagnosticReprint: p.boolean("DIAGNOSTIC_REPRINT", false),

		LogJSON: p.boolean("LOG_JSON", false),
	}

	policy, err := services.ParseRetentionPolicy(p.str("RETENTION_POLICY", "history"))
	if err != nil {
		p.fail("RETENTION_POLICY", err)
	}
	cfg.RetentionPolicy = policy

	if err := cfg.LogLevel.UnmarshalText([]byte(p.str("LOG_LEVEL", "info"))); err != nil {
		p.fail("LOG_LEVEL", err)
	}

	p.errs = append(p.errs, cfg.validate()...)
	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DSN is the PostgreSQL connection string built from the DB_* variables.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) validate() []error {
	var list []error
	if c.StorageDriver != StorageDriverPostgres && c.StorageDriver != StorageDriverMemory {
		list = append(list, errs.NewValueIsInvalidErrorWithCause("STORAGE_DRIVER",
			fmt.Errorf("%q is neither %q nor %q", c.StorageDriver, StorageDriverPostgres, StorageDriverMemory)))
	}
	if c.ReclaimMode != ReclaimModeSync && c.ReclaimMode != ReclaimModeAsync {
		list = append(list, errs.NewValueIsInvalidErrorWithCause("RECLAIM_MODE",
			fmt.Errorf("%q is neither %q nor %q", c.ReclaimMode, ReclaimModeSync, ReclaimModeAsync)))
	}
	if c.OrderTTL <= 0 {
		list = append(list, errs.NewValueIsInvalidErrorWithCause("ORDER_TTL", fmt.Errorf("must be positive, got %s", c.OrderTTL)))
	}
	if c.StorageDriver == StorageDriverPostgres && c.DBName == "" {
		list = append(list, errs.NewValueIsRequiredError("DB_NAME"))
	}
	return list
}

type envParser struct {
	getenv func(string) string
	errs   []error
}

func (p *envParser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *envParser) duration(key string, def time.Duration) time.Duration {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return d
}

func (p *envParser) integer(key string, def int) int {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return n
}

func (p *envParser) boolean(key string, def bool) bool {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return b
}

func (p *envParser) fail(key string, err error) {
	p.errs = append(p.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
}
