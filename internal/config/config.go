package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds runtime settings read from the environment
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	GinMode    string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	Storage string `env:"STORAGE" envDefault:"postgres"`
	DB      DBConfig

	JWTSecret    string        `env:"JWT_SECRET_KEY,required,notEmpty"`
	JWTAlgorithm string        `env:"JWT_ALGORITHM" envDefault:"HS256"`
	JWTTTL       time.Duration `env:"JWT_TTL" envDefault:"20m"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Usernames matching this value are registered with the admin role
	InitialAdminUsername string `env:"INITIAL_ADMIN_USERNAME"`

	// DotEnvLoaded is false when no .env file was found
	DotEnvLoaded bool
}

// DBConfig holds database connection parameters
type DBConfig struct {
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN renders the libpq keyword/value connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Load reads an optional .env file and then parses the environment.
// A .env that exists but cannot be parsed is an error.
func Load() (*Config, error) {
	dotEnvLoaded := true
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		dotEnvLoaded = false
	}

	cfg := &Config{DotEnvLoaded: dotEnvLoaded}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that env tags cannot express
func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
			return fmt.Errorf("database environment variables not set (DB_HOST, DB_USER, DB_NAME)")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q, want %q or %q", c.Storage, StoragePostgres, StorageMemory)
	}

	switch strings.ToUpper(c.JWTAlgorithm) {
	case "HS256", "HS384", "HS512":
		c.JWTAlgorithm = strings.ToUpper(c.JWTAlgorithm)
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWTAlgorithm)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	return nil
}
