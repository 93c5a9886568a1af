package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// MinSessionSecretLen is the shortest accepted HS256 signing secret.
const MinSessionSecretLen = 32

// devSessionSecret signs cookies when APP_ENV=dev and SESSION_SECRET is unset.
const devSessionSecret = "dev-only-session-secret-change-me-0123456789"

// SessionConfig configures login sessions and the cookie that carries them.
type SessionConfig struct {
	Secret       []byte
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	Issuer       string
}

func loadSessionConfig(env string) (SessionConfig, error) {
	cfg := SessionConfig{
		TTL:          24 * time.Hour,
		CookieName:   "member_session",
		CookieSecure: true,
		Issuer:       "member-portal",
	}

	secret := os.Getenv("SESSION_SECRET")
	switch {
	case secret == "" && env == EnvDev:
		secret = devSessionSecret
	case secret == "":
		return SessionConfig{}, fmt.Errorf("missing required env var: SESSION_SECRET")
	case len(secret) < MinSessionSecretLen:
		return SessionConfig{}, fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLen)
	}
	cfg.Secret = []byte(secret)

	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return SessionConfig{}, fmt.Errorf("SESSION_TTL must be a duration (e.g. 24h): %w", err)
		}
		if d <= 0 {
			return SessionConfig{}, fmt.Errorf("SESSION_TTL must be positive")
		}
		cfg.TTL = d
	}
	if v := os.Getenv("SESSION_COOKIE_NAME"); v != "" {
		cfg.CookieName = v
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return SessionConfig{}, fmt.Errorf("COOKIE_SECURE must be a bool: %w", err)
		}
		cfg.CookieSecure = b
	} else if env == EnvDev {
		// Local http://localhost has no TLS.
		cfg.CookieSecure = false
	}
	return cfg, nil
}
