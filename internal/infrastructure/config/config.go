package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Admin     AdminConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Reconcile ReconcileConfig
}

type AuthConfig struct {
	JWTSecret              string        `env:"JWT_SECRET"`
	JWTTTL                 time.Duration `env:"JWT_TTL,                  default=24h"`
	JWTIssuer              string        `env:"JWT_ISSUER,               default=student-records"`
	BcryptCost             int           `env:"BCRYPT_COST,              default=10"`
	DefaultStudentPassword string        `env:"DEFAULT_STUDENT_PASSWORD, default=FeeM@2025"`
}

// AdminConfig describes the bootstrap administrator. No admin is created while
// Email or Password is empty.
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME,     default=System Admin"`
	Username string `env:"ADMIN_USERNAME, default=admin"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=student_records"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type ReconcileConfig struct {
	LockTTL time.Duration `env:"LOCK_TTL,          default=10s"`
	Workers int           `env:"RECONCILE_WORKERS, default=8"`
}

// IsDevelopment reports whether the process runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
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
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.Reconcile.Workers <= 0 {
		return errors.New("RECONCILE_WORKERS must be positive")
	}
	return nil
}
