package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/HumourSpeech/kasparro-backend-Nitin-Mishra/models"
)

var DB *gorm.DB

// InitDB opens the sqlite database at the given path and creates the schema.
// Schema ownership lives here: the ingestion core assumes the tables exist.
func InitDB(path string) error {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return err
	}

	DB = db
	return nil
}

// Migrate creates or updates the tables for all persisted entities.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.RawData{},
		&models.UnifiedUser{},
		&models.ETLJob{},
		&models.Checkpoint{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
