package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session storage backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

const devSessionSecret = "dev-session-secret-change-me"

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Upload  UploadConfig

	RevalidationWorkers int `env:"REVALIDATION_WORKERS, default=4"`
}

type BackendConfig struct {
	// URL is NEXT_PUBLIC_API_URL; empty selects the fixture data source in development.
	URL       string        `env:"NEXT_PUBLIC_API_URL"`
	Timeout   time.Duration `env:"BACKEND_TIMEOUT, default=15s"`
	MockDelay time.Duration `env:"MOCK_DELAY,      default=500ms"`
}

type SessionConfig struct {
	Secret     string        `env:"SESSION_SECRET"`
	TTL        time.Duration `env:"SESSION_TTL,   default=24h"`
	Store      string        `env:"SESSION_STORE, default=memory"`
	SQLitePath string        `env:"SQLITE_PATH,   default=dashboard.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=call_analyzer_dashboard"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type UploadConfig struct {
	MaxMB int64 `env:"MAX_UPLOAD_MB, default=50"`
}

// IsDevelopment reports whether ENV is development.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// UseMockBackend selects the fixture data source: no backend URL in development.
func (c *Config) UseMockBackend() bool {
	return c.IsDevelopment() && c.Backend.URL == ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case StoreMemory, StoreSQLite, StoreRedis, StoreMongo:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store)
	}
	if c.Session.Secret == "" {
		if !c.IsDevelopment() {
			return errors.New("SESSION_SECRET is required outside development")
		}
		c.Session.Secret = devSessionSecret
	}
	return nil
}
