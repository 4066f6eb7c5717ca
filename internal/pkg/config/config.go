package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET, required"`
	Issuer         string        `env:"JWT_ISSUER,            default=adonwheels"`
	TokenTTL       time.Duration `env:"TOKEN_TTL,             default=168h"`
	BcryptCost     int           `env:"BCRYPT_COST,           default=10"`
	HashWorkers    int           `env:"HASH_WORKERS,          default=4"`
	ReservationTTL time.Duration `env:"EMAIL_RESERVATION_TTL, default=30s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=adonwheels"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether the service runs with development defaults
// (human-readable logs).
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file into the process environment and then
// decodes the environment with go-envconfig. Variables already set in the
// environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom decodes configuration from the given lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(cfg.Auth.JWTSecret) < 16 {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least 16 characters")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("config: TOKEN_TTL must be positive")
	}
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("config: BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &cfg, nil
}
