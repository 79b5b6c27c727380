package database

import (
	"path/filepath"
	"testing"

	"github.com/franciscosanchezn/pizza-admin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "pizza", Password: "pw", Name: "pizzas", SSLMode: "disable"}
	assert.Equal(t, "host=db user=pizza password=pw dbname=pizzas port=5432 sslmode=disable", pg.DSN())

	url := DatabaseConfig{Driver: "PostgreSQL", URL: "postgres://pizza@db/pizzas", Host: "ignored"}
	assert.Equal(t, "postgres://pizza@db/pizzas", url.DSN())

	lite := DatabaseConfig{Path: "pizza.sqlite"}
	assert.Equal(t, "pizza.sqlite?_busy_timeout=5000&_journal_mode=WAL", lite.DSN())
	withParams := DatabaseConfig{Driver: "sqlite3", Path: "file:pizza.sqlite?cache=shared"}
	assert.Equal(t, "file:pizza.sqlite?cache=shared&_busy_timeout=5000&_journal_mode=WAL", withParams.DSN())

	assert.Empty(t, (&DatabaseConfig{Driver: "oracle"}).DSN())
	assert.NotContains(t, pg.String(), "pw")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     DatabaseConfig
		wantErr string
	}{
		{"sqlite default driver", DatabaseConfig{Path: "pizza.sqlite"}, ""},
		{"sqlite without path", DatabaseConfig{Driver: "sqlite"}, "DB_PATH"},
		{"postgres url", DatabaseConfig{Driver: "postgres", URL: "postgres://db"}, ""},
		{"postgres host", DatabaseConfig{Driver: "postgresql", Host: "db"}, ""},
		{"postgres without host", DatabaseConfig{Driver: "postgres"}, "DB_HOST"},
		{"unknown driver", DatabaseConfig{Driver: "oracle"}, "unsupported database driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestInitDatabaseRejectsUnknownDriver(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.Nil(t, db)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestInitDatabaseMigrateAndSeed(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "pizza.sqlite")})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.NoError(t, Seed(db))

	var pizzas []models.Pizza
	require.NoError(t, db.Order("id").Find(&pizzas).Error)
	require.Len(t, pizzas, 4)
	assert.Equal(t, []string{"Tomato Sauce", "Mozzarella", "Basil"}, pizzas[0].Toppings)
	assert.NotZero(t, pizzas[0].BaseID)

	// seeding twice keeps the data as is
	require.NoError(t, Seed(db))
	var count int64
	require.NoError(t, db.Model(&models.Pizza{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}
