package database

import (
	"testing"

	"github.com/bengalurutaxi/btc-backend/internal/config"
	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectorByDriver(t *testing.T) {
	cfg := config.Database{Host: "db", User: "u", Password: "p", Name: "btc", Port: "5432"}

	cfg.Driver = "postgres"
	d, err := Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	cfg.Driver = "mysql"
	d, err = Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	cfg.Driver = "oracle"
	_, err = Dialector(cfg)
	assert.Error(t, err)
}

func TestOpenMigratesSchema(t *testing.T) {
	db, err := Open(sqlite.Open("file::memory:"), config.Database{MaxOpenConns: 1})
	require.NoError(t, err)

	for _, table := range []interface{}{
		&models.Admin{}, &models.Customer{}, &models.Vehicle{}, &models.Driver{},
		&models.Ride{}, &models.Payment{}, &models.Commission{}, &models.Rating{},
	} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasColumn(&models.Ride{}, "verification_code"))
	assert.True(t, db.Migrator().HasColumn(&models.Driver{}, "is_active"))

	// migrations are idempotent
	assert.NoError(t, RunMigrations(db))
}
