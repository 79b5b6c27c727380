package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var log = logrus.New()

// retryDelays is the wait after each failed connection attempt
var retryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// InitDatabase initializes the database connection based on the provided configuration
// It supports both PostgreSQL and SQLite drivers with automatic retry logic and connection pooling
func InitDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var db *gorm.DB
	var err error
	driver := cfg.Dialect()

	log.WithFields(logrus.Fields{
		"db_driver": driver,
		"db_host":   cfg.Host,
		"db_name":   cfg.Name,
		"db_path":   cfg.Path,
	}).Info("Initializing database connection")

	// Retry logic with exponential backoff
	maxRetries := len(retryDelays)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.WithFields(logrus.Fields{
			"attempt":     attempt,
			"max_retries": maxRetries,
		}).Info("Attempting database connection")

		// Select driver based on configuration
		if driver == "postgres" {
			log.WithField("dsn_host", cfg.Host).Debug("Connecting to PostgreSQL")
			db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
		} else {
			log.WithField("db_path", cfg.Path).Debug("Connecting to SQLite")
			db, err = gorm.Open(sqlite.Open(cfg.DSN()), &gorm.Config{})
		}

		if err == nil {
			// Connection successful, verify with ping
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				log.WithError(sqlErr).Error("Failed to get database instance")
				err = sqlErr
			} else {
				pingErr := sqlDB.Ping()
				if pingErr != nil {
					log.WithError(pingErr).Error("Failed to ping database")
					err = pingErr
				} else {
					// Success! Configure connection pool
					log.Info("Database connection successful, configuring connection pool")
					configureConnectionPool(sqlDB, driver)

					log.WithFields(logrus.Fields{
						"db_driver": driver,
						"attempt":   attempt,
					}).Info("Database initialized successfully")

					return db, nil
				}
			}
		}

		// Connection failed
		log.WithFields(logrus.Fields{
			"attempt": attempt,
			"error":   err.Error(),
		}).Warn("Database connection attempt failed")

		// Don't wait after the last attempt
		if attempt < maxRetries {
			delay := retryDelays[attempt-1]
			log.WithField("delay", delay).Info("Retrying database connection")
			time.Sleep(delay)
		}
	}

	// All retries exhausted
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// configureConnectionPool sets up connection pool parameters for the driver.
// SQLite allows a single writer, so its pool is capped at one connection.
func configureConnectionPool(sqlDB *sql.DB, driver string) {
	maxOpen, maxIdle := 25, 5
	if driver == "sqlite" {
		maxOpen, maxIdle = 1, 1
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	// SetConnMaxLifetime sets the maximum amount of time a connection may be reused
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	log.WithFields(logrus.Fields{
		"max_open_conns":    maxOpen,
		"max_idle_conns":    maxIdle,
		"conn_max_lifetime": "5m",
	}).Debug("Connection pool configured")
}

// Migrate creates or updates the schema of every persisted model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Base{}, &models.Pizza{}); err != nil {
		return fmt.Errorf("migrate pizza tables: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.OAuthClient{}, &models.OAuthToken{}); err != nil {
		return fmt.Errorf("migrate oauth tables: %w", err)
	}
	return nil
}

// Seed inserts the default bases and pizzas when the pizza table is empty
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Pizza{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Database already seeded with initial data")
		return nil
	}

	log.Info("Database is empty, seeding initial data")
	bases := []models.Base{
		{Name: "Classic", Description: "Thin hand-stretched dough with tomato sauce"},
		{Name: "Bianca", Description: "White base with garlic cream"},
	}
	pizzas := []models.Pizza{
		{Name: "Margherita", Price: 10.99, Toppings: []string{"Tomato Sauce", "Mozzarella", "Basil"}},
		{Name: "Pepperoni", Price: 12.99, Toppings: []string{"Tomato Sauce", "Mozzarella", "Pepperoni"}},
		{Name: "Vegetarian", Price: 11.99, Toppings: []string{"Tomato Sauce", "Mozzarella", "Bell Peppers", "Olives"}},
		{Name: "Quattro Formaggi", Price: 13.49, Toppings: []string{"Mozzarella", "Gorgonzola", "Parmesan", "Fontina"}},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bases).Error; err != nil {
			return err
		}
		for i := range pizzas {
			pizzas[i].BaseID = bases[0].ID
			if pizzas[i].Name == "Quattro Formaggi" {
				pizzas[i].BaseID = bases[1].ID
			}
		}
		if err := tx.Create(&pizzas).Error; err != nil {
			return err
		}
		log.WithField("pizzas", len(pizzas)).Info("Database seeded successfully")
		return nil
	})
}
