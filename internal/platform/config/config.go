package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

// Supported storage backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	DataBackend   string
	DatabaseURL   string
	SQLiteDBPath  string
	EnableDBCheck bool

	// Scheduler
	SchedulerEnabled       bool
	SchedulerInterval      time.Duration
	MaterializeConcurrency int
	MaterializeMaxAttempts int

	// AMQP, disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	PosthogAPIKey   string
	PosthogEndpoint string

	// RateLimit is a ulule/limiter formatted rate for the projection endpoint, e.g. "120-M".
	RateLimit          string
	CORSAllowedOrigins []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("DATA_BACKEND", BackendMemory)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_DB_PATH", "./data/recurrence.db")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_INTERVAL", "1h")
	v.SetDefault("MATERIALIZE_CONCURRENCY", 4)
	v.SetDefault("MATERIALIZE_MAX_ATTEMPTS", 5)
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "recurrences")
	v.SetDefault("AMQP_ROUTING_KEY", "transactions.materialized")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "")
	v.SetDefault("RATE_LIMIT", "120-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
}

// LoadConfig loads configuration from environment variables and .env file if present.
// Values are not checked here; call Validate.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:                   v.GetString("PORT"),
		IsProduction:           v.GetBool("IS_PRODUCTION"),
		DataBackend:            strings.ToLower(strings.TrimSpace(v.GetString("DATA_BACKEND"))),
		DatabaseURL:            v.GetString("PGSQL_URL"),
		SQLiteDBPath:           v.GetString("SQLITE_DB_PATH"),
		EnableDBCheck:          v.GetBool("ENABLE_DB_CHECK"),
		SchedulerEnabled:       v.GetBool("SCHEDULER_ENABLED"),
		MaterializeConcurrency: v.GetInt("MATERIALIZE_CONCURRENCY"),
		MaterializeMaxAttempts: v.GetInt("MATERIALIZE_MAX_ATTEMPTS"),
		AMQPURL:                v.GetString("AMQP_URL"),
		AMQPExchange:           v.GetString("AMQP_EXCHANGE"),
		AMQPRoutingKey:         v.GetString("AMQP_ROUTING_KEY"),
		PosthogAPIKey:          v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:        v.GetString("POSTHOG_ENDPOINT"),
		RateLimit:              v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:     splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	interval := v.GetString("SCHEDULER_INTERVAL")
	d, err := time.ParseDuration(interval)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL %q: %w", interval, err)
	}
	cfg.SchedulerInterval = d

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "PGSQL_URL is required when using the postgres backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLITE_DB_PATH is required when using the sqlite backend")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s %s]",
			c.DataBackend, BackendPostgres, BackendSQLite, BackendMemory))
	}

	if c.SchedulerEnabled && c.SchedulerInterval < time.Second {
		problems = append(problems, fmt.Sprintf("scheduler interval %s is too short: must be at least 1s", c.SchedulerInterval))
	}
	if c.MaterializeConcurrency < 1 {
		problems = append(problems, fmt.Sprintf("invalid materialize concurrency %d: must be positive", c.MaterializeConcurrency))
	}
	if c.MaterializeMaxAttempts < 1 {
		problems = append(problems, fmt.Sprintf("invalid materialize max attempts %d: must be positive", c.MaterializeMaxAttempts))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
		problems = append(problems, fmt.Sprintf("invalid rate limit '%s': %v", c.RateLimit, err))
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}
