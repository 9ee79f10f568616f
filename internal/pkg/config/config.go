package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Session backends.
const (
	SessionBackendRedis  = "redis"
	SessionBackendMongo  = "mongo"
	SessionBackendMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session SessionConfig
	Backend BackendConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	Backend      string        `env:"SESSION_BACKEND,       default=redis"`
	TTL          time.Duration `env:"SESSION_TTL,           default=12h"`
	CookieName   string        `env:"SESSION_COOKIE,        default=portal_session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
	SubmitWindow time.Duration `env:"SUBMIT_GUARD_WINDOW,   default=10m"`
}

type BackendConfig struct {
	BaseURL          string        `env:"BACKEND_BASE_URL,          default=http://localhost:8000/api"`
	Timeout          time.Duration `env:"BACKEND_TIMEOUT,           default=10s"`
	FailureThreshold uint32        `env:"BACKEND_BREAKER_FAILURES,  default=5"`
	OpenTimeout      time.Duration `env:"BACKEND_BREAKER_OPEN_FOR,  default=30s"`
	Interval         time.Duration `env:"BACKEND_BREAKER_INTERVAL,  default=60s"`
	MaxRequests      uint32        `env:"BACKEND_BREAKER_PROBES,    default=1"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=service_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsProduction reports whether the portal runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file, then the environment, using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case SessionBackendRedis, SessionBackendMongo, SessionBackendMemory:
	default:
		return fmt.Errorf("config: SESSION_BACKEND must be one of redis, mongo, memory (got %q)", c.Session.Backend)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("config: BACKEND_BASE_URL is required")
	}
	return nil
}
