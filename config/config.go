// Package config loads SDK configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/codesechub/hubclient/logger"
)

// ErrInvalidConfig wraps every configuration failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the SDK configuration. All fields come from the environment;
// only the API base URL has a meaningful default for local backends.
type Config struct {
	// APIBaseURL is the API root every request is resolved against.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`

	// RequestTimeout aborts stuck requests.
	RequestTimeout time.Duration `env:"API_REQUEST_TIMEOUT" envDefault:"30s"`

	// StoragePath persists the session to a JSON file. Empty keeps the
	// session in memory only.
	StoragePath string `env:"STORAGE_PATH"`

	// RedisURL persists the session to Redis instead of a file, for
	// fleets of headless clients sharing one login.
	RedisURL string `env:"REDIS_URL"`

	// RedisPrefix namespaces the Redis keys.
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"hubclient"`

	// Sentry enables error reporting when a DSN is set.
	Sentry logger.SentryConfig

	// Debug lowers the log level to include request traces.
	Debug bool `env:"DEBUG" envDefault:"false"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an absolute URL", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("API_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.StoragePath != "" && c.RedisURL != "" {
		return errors.New("STORAGE_PATH and REDIS_URL are mutually exclusive")
	}
	return nil
}
