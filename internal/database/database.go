package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cardshop/internal/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto migrate the schema
	err = db.AutoMigrate(
		&models.InventoryItem{},
		&models.Customer{},
		&models.PriceHistory{},
		&models.Setting{},
	)
	if err != nil {
		return nil, err
	}

	logrus.Info("Database initialized successfully")
	return db, nil
}
