package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides application configuration.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Provide(NewQuotaHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	DBPath     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IngestCron     string
	VerifyCron     string
	RunLockTTL     time.Duration
	RequestTimeout time.Duration

	Ingest IngestConfig
}

// IngestConfig carries the default quota and run limits. The values may be
// overridden at runtime through the hot-reloadable quota file (see quota.go).
type IngestConfig struct {
	MaxCallsPerDay     int
	MaxNewJobsPerDay   int
	MaxFetchPerRun     int
	PerSourceLimit     int
	GreenhousePerPage  int
	GreenhouseMaxPages int
	VerifyDelay        time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "jobfeed"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:     getenv("DATABASE_TYPE", "mysql"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "3306"),
		DBName:     getenv("DATABASE_NAME", "jobfeed"),
		DBUser:     getenv("DATABASE_USER", "jobfeed"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),
		DBPath:     getenv("DATABASE_PATH", "jobfeed.db"),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
		RedisDB:       getenvInt("REDIS_DB", 0),

		IngestCron:     getenv("INGEST_CRON", "@every 1h"),
		VerifyCron:     getenv("VERIFY_CRON", "@every 6h"),
		RunLockTTL:     time.Duration(getenvInt("RUN_LOCK_TTL_S", 900)) * time.Second,
		RequestTimeout: time.Duration(getenvInt("REQUEST_TIMEOUT_S", 20)) * time.Second,

		Ingest: IngestConfig{
			MaxCallsPerDay:     getenvInt("MAX_CALLS_PER_DAY", 50),
			MaxNewJobsPerDay:   getenvInt("MAX_NEW_JOBS_PER_DAY", 200),
			MaxFetchPerRun:     getenvInt("MAX_FETCH_PER_RUN", 50),
			PerSourceLimit:     getenvInt("INGEST_PER_SOURCE_LIMIT", 0),
			GreenhousePerPage:  getenvInt("GREENHOUSE_PER_PAGE", 100),
			GreenhouseMaxPages: getenvInt("GREENHOUSE_MAX_PAGES", 50),
			VerifyDelay:        time.Duration(getenvInt("VERIFY_DELAY_MS", 500)) * time.Millisecond,
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate fails fast on out-of-range values before any source is touched.
func (c Config) validate() error {
	var errs []string

	check := func(name string, value, min, max int) {
		if value < min {
			errs = append(errs, fmt.Sprintf("%s must be >= %d (got %d)", name, min, value))
		}
		if value > max {
			errs = append(errs, fmt.Sprintf("%s must be <= %d (got %d)", name, max, value))
		}
	}

	check("MAX_CALLS_PER_DAY", c.Ingest.MaxCallsPerDay, 0, 10_000)
	check("MAX_NEW_JOBS_PER_DAY", c.Ingest.MaxNewJobsPerDay, 0, 50_000)
	check("MAX_FETCH_PER_RUN", c.Ingest.MaxFetchPerRun, 1, 50_000)
	check("INGEST_PER_SOURCE_LIMIT", c.Ingest.PerSourceLimit, 0, 1_000_000)
	check("GREENHOUSE_PER_PAGE", c.Ingest.GreenhousePerPage, 1, 500)
	check("GREENHOUSE_MAX_PAGES", c.Ingest.GreenhouseMaxPages, 1, 500)
	check("REQUEST_TIMEOUT_S", int(c.RequestTimeout/time.Second), 1, 120)

	switch c.DBType {
	case "mysql", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("DATABASE_TYPE must be one of mysql|postgres|sqlite (got %q)", c.DBType))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
