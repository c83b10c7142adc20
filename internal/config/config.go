package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

type Config struct {
	port               string
	backendURL         string
	backendTimeout     time.Duration
	sessionIdleTTL     time.Duration
	dBHost             string
	dBPassword         string
	dBUsername         string
	sentryDSN          string
	googleCloudProject string
	otelEnabled        bool
	env                environment
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) BackendURL() string {
	return c.backendURL
}

func (c *Config) BackendTimeout() time.Duration {
	return c.backendTimeout
}

func (c *Config) SessionIdleTTL() time.Duration {
	return c.sessionIdleTTL
}

func (c *Config) DBHost() string {
	return c.dBHost
}

func (c *Config) DBPassword() string {
	return c.dBPassword
}

func (c *Config) DBUsername() string {
	return c.dBUsername
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) GoogleCloudProject() string {
	return c.googleCloudProject
}

func (c *Config) OTelEnabled() bool {
	return c.otelEnabled
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, port: %s, backendURL: %s, backendTimeout: %s, sessionIdleTTL: %s, otelEnabled: %t, ...}",
		string(c.env), c.port, c.backendURL, c.backendTimeout, c.sessionIdleTTL, c.otelEnabled,
	)
}

type rawConfig struct {
	Environment        string        `env:"RIFTREWIND_ENVIRONMENT"`
	Port               string        `env:"PORT" envDefault:"8080"`
	BackendURL         string        `env:"BACKEND_URL"`
	BackendTimeout     time.Duration `env:"BACKEND_TIMEOUT" envDefault:"5m"`
	SessionIdleTTL     time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`
	DBHost             string        `env:"DB_HOST"`
	DBPassword         string        `env:"DB_PASSWORD"`
	DBUsername         string        `env:"DB_USERNAME"`
	SentryDSN          string        `env:"SENTRY_DSN"`
	GoogleCloudProject string        `env:"GOOGLE_CLOUD_PROJECT"`
	OTelEnabled        bool          `env:"OTEL_ENABLED" envDefault:"false"`
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var raw rawConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	if raw.Environment == "" {
		return missingKey("RIFTREWIND_ENVIRONMENT")
	}

	var environ environment
	switch raw.Environment {
	case "production":
		environ = production
	case "staging":
		environ = staging
	case "development":
		environ = development
	default:
		return Config{}, fmt.Errorf("%w: RIFTREWIND_ENVIRONMENT (%s)", ErrInvalidValue, raw.Environment)
	}
	if string(environ) == "" {
		panic("logic error: env is empty")
	}

	if environ == production || environ == staging {
		if raw.BackendURL == "" {
			return missingKey("BACKEND_URL")
		}
		if raw.DBHost == "" {
			return missingKey("DB_HOST")
		}
		if raw.DBUsername == "" {
			return missingKey("DB_USERNAME")
		}
		if raw.DBPassword == "" {
			return missingKey("DB_PASSWORD")
		}
		if raw.SentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	if raw.BackendURL != "" {
		parsed, err := url.Parse(raw.BackendURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return Config{}, fmt.Errorf("%w: BACKEND_URL (%s)", ErrInvalidValue, raw.BackendURL)
		}
	}

	if raw.BackendTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: BACKEND_TIMEOUT (%s)", ErrInvalidValue, raw.BackendTimeout)
	}
	if raw.SessionIdleTTL <= 0 {
		return Config{}, fmt.Errorf("%w: SESSION_IDLE_TTL (%s)", ErrInvalidValue, raw.SessionIdleTTL)
	}

	return Config{
		port:               raw.Port,
		backendURL:         raw.BackendURL,
		backendTimeout:     raw.BackendTimeout,
		sessionIdleTTL:     raw.SessionIdleTTL,
		dBHost:             raw.DBHost,
		dBPassword:         raw.DBPassword,
		dBUsername:         raw.DBUsername,
		sentryDSN:          raw.SentryDSN,
		googleCloudProject: raw.GoogleCloudProject,
		otelEnabled:        raw.OTelEnabled,
		env:                environ,
	}, nil
}
