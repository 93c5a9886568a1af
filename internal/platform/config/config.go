package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/unique-meal/member-portal/internal/domain"
)

const (
	EnvDev        = "dev"
	EnvProduction = "production"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendMemory       = "memory"
	BackendPostgres     = "postgres"
	BackendSQLite       = "sqlite"
	BackendGormPostgres = "gorm-postgres"
)

type Config struct {
	Env  string
	Port string

	StorageBackend string
	DatabaseURL    string
	SQLitePath     string

	Session SessionConfig

	LogLevel  string
	LogFormat string

	DefaultMembershipTier string
	BcryptCost            int

	SMTP SMTPConfig
}

// SMTPConfig enables booking confirmation mail when Host is set.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Timeout bounds delivery of one confirmation.
	Timeout time.Duration
}

func (c SMTPConfig) Enabled() bool { return c.Host != "" }

// LoadDotEnv loads variables from a .env file when one is present.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load %s: %w", strings.Join(existing, ","), err)
	}
	return nil
}

// LoadFromEnv reads and validates the portal configuration.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Env:                   getenv("APP_ENV", EnvProduction),
		Port:                  getenv("PORT", "8080"),
		StorageBackend:        strings.ToLower(getenv("STORAGE_BACKEND", BackendMemory)),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		SQLitePath:            getenv("SQLITE_PATH", "members.db"),
		LogLevel:              getenv("LOG_LEVEL", "info"),
		LogFormat:             strings.ToLower(getenv("LOG_FORMAT", "json")),
		DefaultMembershipTier: getenv("DEFAULT_MEMBERSHIP_TIER", domain.DefaultMembershipTier),
		BcryptCost:            bcrypt.DefaultCost,
	}

	switch cfg.StorageBackend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres, BackendGormPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=%s", cfg.StorageBackend)
		}
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("BCRYPT_COST must be an integer: %w", err)
		}
		if n < bcrypt.MinCost || n > bcrypt.MaxCost {
			return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
		cfg.BcryptCost = n
	}

	sess, err := loadSessionConfig(cfg.Env)
	if err != nil {
		return Config{}, err
	}
	cfg.Session = sess

	smtpCfg, err := loadSMTPConfig()
	if err != nil {
		return Config{}, err
	}
	cfg.SMTP = smtpCfg

	return cfg, nil
}

func loadSMTPConfig() (SMTPConfig, error) {
	cfg := SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     587,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
		Timeout:  10 * time.Second,
	}
	if v := os.Getenv("SMTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return SMTPConfig{}, fmt.Errorf("SMTP_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 65535 {
			return SMTPConfig{}, fmt.Errorf("SMTP_PORT must be a port number, got %q", v)
		}
		cfg.Port = n
	}
	if cfg.Enabled() && cfg.From == "" {
		return SMTPConfig{}, fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
