package services

import (
	"fmt"
	"testing"

	"vaxtrack-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database and migrates the engine's
// tables. Each test gets its own database, keyed by test name.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Beneficiary{},
		&models.VaccineMaster{},
		&models.Vaccination{},
		&models.VaccinationReminder{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
