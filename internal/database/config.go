package database

import (
	"fmt"
	"net/url"
	"strings"
)

// sqlitePragmas are appended to every SQLite DSN. Concurrent topping
// propagation issues several PUTs at once, so writers wait for the lock
// instead of failing with "database is locked".
var sqlitePragmas = url.Values{
	"_busy_timeout": {"5000"},
	"_journal_mode": {"WAL"},
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	// Driver is postgres/postgresql or sqlite. Empty means sqlite.
	Driver string

	// PostgreSQL. URL wins over the discrete fields.
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// SQLite file path, or ":memory:"
	Path string
}

// Dialect returns the normalized driver name: "postgres", "sqlite", or the
// lowercased input when it is not supported
func (c DatabaseConfig) Dialect() string {
	switch d := strings.ToLower(strings.TrimSpace(c.Driver)); d {
	case "postgres", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3", "":
		return "sqlite"
	default:
		return d
	}
}

// Validate reports settings that can never produce a connection
func (c DatabaseConfig) Validate() error {
	switch c.Dialect() {
	case "postgres":
		if c.URL == "" && c.Host == "" {
			return fmt.Errorf("postgres requires DATABASE_URL or DB_HOST")
		}
	case "sqlite":
		if c.Path == "" {
			return fmt.Errorf("sqlite requires DB_PATH")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", c.Driver)
	}
	return nil
}

// String returns a string representation with sensitive data masked
func (c DatabaseConfig) String() string {
	return fmt.Sprintf("DatabaseConfig{Driver: %s, Host: %s, Port: %s, User: %s, Password: [REDACTED], Name: %s, SSLMode: %s, Path: %s}",
		c.Dialect(), c.Host, c.Port, c.User, c.Name, c.SSLMode, c.Path)
}

// DSN builds the connection string for the configured dialect. It is empty
// for unsupported drivers.
func (c DatabaseConfig) DSN() string {
	switch c.Dialect() {
	case "postgres":
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
	case "sqlite":
		sep := "?"
		if strings.Contains(c.Path, "?") {
			sep = "&"
		}
		return c.Path + sep + sqlitePragmas.Encode()
	default:
		return ""
	}
}
