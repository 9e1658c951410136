package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

const devJWTSecret = "dev-secret-change-me"

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// Database configuration
	DBDriver    string `json:"db_driver"`
	DBPath      string `json:"db_path"`
	DatabaseURL string `json:"database_url"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret          string   `json:"jwt_secret"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`

	// Short links
	ShortLinkBaseURL     string        `json:"short_link_base_url"`
	ShortLinkLength      int           `json:"short_link_length"`
	ShortLinkMaxAttempts int           `json:"short_link_max_attempts"`
	RedisURL             string        `json:"redis_url"`
	ShortLinkCacheTTL    time.Duration `json:"short_link_cache_ttl"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DBDriver: %s, DBPath: %s, DatabaseURL: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], LogLevel: %s, JWTSecret: [REDACTED], ShortLinkBaseURL: %s, ShortLinkLength: %d, ShortLinkMaxAttempts: %d, RedisURL: %s}",
		c.Environment, c.Port, c.Host, c.DBDriver, c.DBPath, maskDatabaseURL(c.DatabaseURL), c.DBHost, c.DBName, c.DBUser,
		c.LogLevel, c.ShortLinkBaseURL, c.ShortLinkLength, c.ShortLinkMaxAttempts, maskDatabaseURL(c.RedisURL))
}

// Database returns the connection settings for database.InitDatabase
func (c *Config) Database() database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:   c.DBDriver,
		URL:      c.DatabaseURL,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		Path:     c.DBPath,
	}
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It validates URL formats and the short link bounds
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config := &Config{
		Environment:          GetEnvWithDefault("APP_ENV", "development"),
		Port:                 port,
		Host:                 GetEnvWithDefault("APP_HOST", "localhost"),
		DBDriver:             strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
		DBPath:               GetEnvWithDefault("DB_PATH", "foodgram.db"),
		DatabaseURL:          GetEnvWithDefault("DATABASE_URL", ""),
		DBHost:               GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:               GetEnvWithDefault("DB_PORT", "5432"),
		DBName:               GetEnvWithDefault("DB_NAME", "foodgram"),
		DBUser:               GetEnvWithDefault("DB_USER", "foodgram"),
		DBPassword:           GetEnvWithDefault("DB_PASSWORD", ""),
		DBSSLMode:            GetEnvWithDefault("DB_SSLMODE", "disable"),
		LogLevel:             GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:            GetEnvWithDefault("JWT_SECRET", ""),
		CORSAllowedOrigins:   splitList(GetEnvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		ShortLinkBaseURL:     GetEnvWithDefault("SHORT_LINK_BASE_URL", "http://localhost:8080/s/"),
		ShortLinkLength:      GetEnvAsType("SHORT_LINK_LENGTH", 8),
		ShortLinkMaxAttempts: GetEnvAsType("SHORT_LINK_MAX_ATTEMPTS", 10),
		RedisURL:             GetEnvWithDefault("REDIS_URL", ""),
		ShortLinkCacheTTL:    GetEnvAsType("SHORT_LINK_CACHE_TTL", 24*time.Hour),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (supported: postgres, sqlite)", c.DBDriver)
	}

	if c.DatabaseURL != "" {
		if _, err := url.ParseRequestURI(c.DatabaseURL); err != nil {
			return fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	if c.ShortLinkLength < 1 || c.ShortLinkLength > 16 {
		return fmt.Errorf("SHORT_LINK_LENGTH must be between 1 and 16, got %d", c.ShortLinkLength)
	}
	if c.ShortLinkMaxAttempts < 1 {
		return fmt.Errorf("SHORT_LINK_MAX_ATTEMPTS must be positive, got %d", c.ShortLinkMaxAttempts)
	}

	if c.JWTSecret == "" {
		if c.Environment == "production" {
			return errors.New("JWT_SECRET environment variable is required in production")
		}
		log.Warn("JWT_SECRET not set, using the development secret")
		c.JWTSecret = devJWTSecret
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(d).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
