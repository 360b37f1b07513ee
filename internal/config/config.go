package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	Env string `env:"ENV" envDefault:"production"`

	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis backs the snapshot cache, preferences and token revocation
	Redis RedisConfig

	// Authentication configuration
	Auth AuthConfig

	// Users page and snapshot cache
	Users UsersConfig

	// Dashboard statistics
	Stats StatsConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	AllowedOrigin   string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver         string        `env:"STORE_DRIVER" envDefault:"postgres"`
	Host           string        `env:"DB_HOST" envDefault:"localhost"`
	Port           string        `env:"DB_PORT" envDefault:"5432"`
	User           string        `env:"DB_USER" envDefault:"postgres"`
	Password       string        `env:"DB_PASSWORD" envDefault:"postgres"`
	Name           string        `env:"DB_NAME" envDefault:"admin_console"`
	SSLMode        string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns   int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns   int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxLifetime    time.Duration `env:"DB_MAX_LIFETIME" envDefault:"5m"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" envDefault:"./migrations"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"./data/admin.db"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// AuthConfig holds session and provider settings
type AuthConfig struct {
	JWTSecret          string        `env:"JWT_SECRET"`
	TokenTTL           time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"12h"`
	LoginRatePerMinute int           `env:"AUTH_LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	GoogleTokenURL     string        `env:"GOOGLE_TOKEN_URL" envDefault:"https://oauth2.googleapis.com/token"`
	GoogleUserInfoURL  string        `env:"GOOGLE_USERINFO_URL" envDefault:"https://www.googleapis.com/oauth2/v2/userinfo"`
}

// UsersConfig holds the users page settings
type UsersConfig struct {
	PageSize int `env:"USERS_PAGE_SIZE" envDefault:"8"`
	// SnapshotTTL bounds how long a fetched user list is reused; zero disables the cache.
	SnapshotTTL time.Duration `env:"USERS_SNAPSHOT_TTL" envDefault:"30s"`
}

// StatsConfig holds dashboard settings
type StatsConfig struct {
	// Timezone used to compute calendar weeks, "Local" uses the host zone.
	Timezone string `env:"STATS_TIMEZONE" envDefault:"Local"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the store and logging settings, for tools that do
// not serve HTTP
func LoadDatabase() (*DatabaseConfig, *LogConfig, error) {
	var cfg struct {
		Database DatabaseConfig
		Log      LogConfig
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg.Database, &cfg.Log, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Users.PageSize <= 0 {
		return fmt.Errorf("USERS_PAGE_SIZE must be positive")
	}
	if _, err := c.Stats.Location(); err != nil {
		return fmt.Errorf("STATS_TIMEZONE: %w", err)
	}
	return nil
}

// Development reports whether pretty logging and debug behaviour are wanted.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Validate checks the driver selection and its required settings
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of: postgres, sqlite")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Location resolves the configured timezone.
func (c StatsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
