package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizza-admin/internal/database"
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

// Config used for the backend configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port int    `json:"port"`
	Host string `json:"host"`

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
	JWTSecret string `json:"jwt_secret"`

	// ToppingMaxParallel caps concurrent pizza updates during topping propagation, 0 means no cap
	ToppingMaxParallel int `json:"topping_max_parallel"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, DBDriver: %s, DBPath: %s, DatabaseURL: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], LogLevel: %s, JWTSecret: [REDACTED], ToppingMaxParallel: %d}",
		c.Port, c.Host, c.DBDriver, c.DBPath, maskDatabaseURL(c.DatabaseURL), c.DBHost, c.DBName, c.DBUser, c.LogLevel, c.ToppingMaxParallel)
}

// Database returns the connection settings for the database package
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
// It also validates formats like DATABASE_URL and the database driver
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		// validate URL with net/url
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	driver := strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite"))
	switch driver {
	case "sqlite", "postgres", "postgresql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres)", driver)
	}

	maxParallel := GetEnvAsType("TOPPING_MAX_PARALLEL", 0)
	if maxParallel < 0 {
		return nil, errors.New("TOPPING_MAX_PARALLEL must not be negative")
	}

	config := &Config{
		Port:               port,
		Host:               GetEnvWithDefault("APP_HOST", "localhost"),
		DBDriver:           driver,
		DBPath:             GetEnvWithDefault("DB_PATH", "pizza.sqlite"),
		DatabaseURL:        dbURL,
		DBHost:             GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:             GetEnvWithDefault("DB_PORT", "5432"),
		DBName:             GetEnvWithDefault("DB_NAME", "pizzas"),
		DBUser:             GetEnvWithDefault("DB_USER", "user"),
		DBPassword:         GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:          GetEnvWithDefault("DB_SSLMODE", "disable"),
		LogLevel:           GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:          GetEnvWithDefault("JWT_SECRET", "secret"),
		ToppingMaxParallel: maxParallel,
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// ClientConfig configures the toppingctl admin client
type ClientConfig struct {
	// APIURL is the base URL of the pizza backend
	APIURL string `json:"api_url"`
	// ReadTimeout bounds read requests only; writes are not timed out
	ReadTimeout  time.Duration `json:"read_timeout"`
	ClientID     string        `json:"client_id"`
	ClientSecret string        `json:"client_secret"`
	RecentLimit  int           `json:"recent_limit"`
	MaxParallel  int           `json:"max_parallel"`
}

// String returns a string representation of ClientConfig with the secret masked
func (c *ClientConfig) String() string {
	return fmt.Sprintf("ClientConfig{APIURL: %s, ReadTimeout: %s, ClientID: %s, ClientSecret: [REDACTED], RecentLimit: %d, MaxParallel: %d}",
		c.APIURL, c.ReadTimeout, c.ClientID, c.RecentLimit, c.MaxParallel)
}

// LoadClientConfig reads the admin client configuration from environment variables
func LoadClientConfig() (*ClientConfig, error) {
	apiURL := strings.TrimRight(GetEnvWithDefault("PIZZA_API_URL", "http://localhost:8080"), "/")
	if _, err := url.ParseRequestURI(apiURL); err != nil {
		return nil, fmt.Errorf("invalid PIZZA_API_URL format: %w", err)
	}

	timeoutMS := GetEnvAsType("PIZZA_READ_TIMEOUT_MS", 5000)
	if timeoutMS <= 0 {
		return nil, errors.New("PIZZA_READ_TIMEOUT_MS must be positive")
	}

	return &ClientConfig{
		APIURL:       apiURL,
		ReadTimeout:  time.Duration(timeoutMS) * time.Millisecond,
		ClientID:     os.Getenv("PIZZA_CLIENT_ID"),
		ClientSecret: os.Getenv("PIZZA_CLIENT_SECRET"),
		RecentLimit:  GetEnvAsType("TOPPING_RECENT_LIMIT", 10),
		MaxParallel:  GetEnvAsType("TOPPING_MAX_PARALLEL", 0),
	}, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
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
	default:
		return defaultValue // Fallback for unsupported types
	}
}
