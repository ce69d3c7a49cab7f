// Package config loads the service configuration.
//
// Values are resolved in three layers, later layers winning:
//  1. built-in defaults (Default)
//  2. an optional YAML file named by CONFIG_FILE
//  3. environment variables, optionally seeded from a .env file
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MinSecretLength is the minimum SESSION_SECRET length (256 bits).
const MinSecretLength = 32

var weakSecrets = []string{"secret", "password", "test", "admin", "default", "changeme"}

// Config is the complete runtime configuration of the API and worker binaries.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	HostName string `yaml:"host_name"`
	Version  string `yaml:"version"`
	LogLevel string `yaml:"log_level"`

	RequestTimeout   time.Duration `yaml:"request_timeout"`
	TraceSampleRatio float64       `yaml:"trace_sample_ratio"`

	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Mail     MailConfig     `yaml:"mail"`
	Login    LoginConfig    `yaml:"login"`
	Worker   WorkerConfig   `yaml:"worker"`
}

// DatabaseConfig holds the DSN and the connection pool settings.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	Secret       string        `yaml:"-"`
	TTL          time.Duration `yaml:"ttl"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

// MailConfig selects the mail channel. An empty SMTP host means mails are only logged.
type MailConfig struct {
	SMTPHost      string `yaml:"smtp_host"`
	SMTPPort      int    `yaml:"smtp_port"`
	From          string `yaml:"from"`
	Username      string `yaml:"username"`
	Password      string `yaml:"-"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// LoginConfig is the per-IP token bucket for POST /accounts/login.
type LoginConfig struct {
	RatePerMinute int `yaml:"rate_per_minute"`
	Burst         int `yaml:"burst"`
}

// WorkerConfig drives the purge job of cmd/worker.
type WorkerConfig struct {
	PurgeSchedule string        `yaml:"purge_schedule"`
	TokenMaxAge   time.Duration `yaml:"token_max_age"`
	MetricsPort   int           `yaml:"metrics_port"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		HostName: "http://localhost:8080",
		Version:  "dev",
		LogLevel: "info",

		RequestTimeout:   30 * time.Second,
		TraceSampleRatio: 1,

		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
		},
		Session: SessionConfig{
			TTL:          14 * 24 * time.Hour,
			CookieSecure: true,
		},
		Mail: MailConfig{
			SMTPPort:      587,
			From:          "webmaster@localhost",
			MaxConcurrent: 4,
		},
		Login: LoginConfig{
			RatePerMinute: 5,
			Burst:         5,
		},
		Worker: WorkerConfig{
			PurgeSchedule: "0 4 * * *",
			TokenMaxAge:   7 * 24 * time.Hour,
			MetricsPort:   9091,
		},
	}
}

// Load resolves the configuration and validates it.
// Warnings describe values that were rejected and replaced by defaults.
func Load() (*Config, []string, error) {
	// A missing .env is the normal case in containers.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, nil, err
		}
	}

	env := &envReader{}
	cfg.applyEnv(env)

	if err := cfg.Validate(); err != nil {
		return nil, env.warnings, err
	}
	return &cfg, env.warnings, nil
}

// mergeFile overlays YAML values on top of cfg. Keys absent from the file keep their value.
func (c *Config) mergeFile(path string) error {
	// #nosec G304 -- path comes from the operator controlled CONFIG_FILE variable
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(env *envReader) {
	c.HTTPAddr = env.String("HTTP_ADDR", c.HTTPAddr)
	c.HostName = strings.TrimRight(env.String("HOST_NAME", c.HostName), "/")
	c.Version = env.String("VERSION", c.Version)
	c.LogLevel = env.String("LOG_LEVEL", c.LogLevel)
	c.RequestTimeout = env.PositiveDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.TraceSampleRatio = env.Ratio("TRACE_SAMPLE_RATIO", c.TraceSampleRatio)

	c.Database.URL = env.String("DATABASE_URL", c.Database.URL)
	c.Database.MaxOpenConns = env.PositiveInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = env.PositiveInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime = env.PositiveDuration("DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime)
	c.Database.ConnMaxIdleTime = env.PositiveDuration("DB_CONN_MAX_IDLE_TIME", c.Database.ConnMaxIdleTime)

	c.Session.Secret = env.String("SESSION_SECRET", c.Session.Secret)
	c.Session.TTL = env.PositiveDuration("SESSION_TTL", c.Session.TTL)
	c.Session.CookieSecure = env.Bool("COOKIE_SECURE", c.Session.CookieSecure)

	c.Mail.SMTPHost = env.String("SMTP_HOST", c.Mail.SMTPHost)
	c.Mail.SMTPPort = env.PositiveInt("SMTP_PORT", c.Mail.SMTPPort)
	c.Mail.From = env.String("SMTP_FROM", c.Mail.From)
	c.Mail.Username = env.String("SMTP_USERNAME", c.Mail.Username)
	c.Mail.Password = env.String("SMTP_PASSWORD", c.Mail.Password)
	c.Mail.MaxConcurrent = env.PositiveInt("MAIL_MAX_CONCURRENT", c.Mail.MaxConcurrent)

	c.Login.RatePerMinute = env.PositiveInt("LOGIN_RATE_LIMIT", c.Login.RatePerMinute)
	c.Login.Burst = env.PositiveInt("LOGIN_RATE_BURST", c.Login.Burst)

	c.Worker.PurgeSchedule = env.Validated("PURGE_SCHEDULE", c.Worker.PurgeSchedule, ValidateCronSchedule)
	c.Worker.TokenMaxAge = env.PositiveDuration("TOKEN_MAX_AGE", c.Worker.TokenMaxAge)
	c.Worker.MetricsPort = env.PositiveInt("METRICS_PORT", c.Worker.MetricsPort)
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL not set")
	}
	if err := ValidateSecret(c.Session.Secret); err != nil {
		return fmt.Errorf("SESSION_SECRET: %w", err)
	}
	if err := ValidateCronSchedule(c.Worker.PurgeSchedule); err != nil {
		return fmt.Errorf("PURGE_SCHEDULE: %w", err)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) exceeds DB_MAX_OPEN_CONNS (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	return nil
}

// MailEnabled reports whether an SMTP relay is configured.
func (c *Config) MailEnabled() bool {
	return c.Mail.SMTPHost != ""
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
