package database

import (
	"github.com/bengalurutaxi/btc-backend/internal/models"
	"gorm.io/gorm"
)

// RunMigrations creates or updates every table. Order matters on dialects
// that enforce the drivers -> vehicles foreign key.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
		&models.Customer{},
		&models.Vehicle{},
		&models.Driver{},
		&models.Ride{},
		&models.Payment{},
		&models.Commission{},
		&models.Rating{},
	)
}
