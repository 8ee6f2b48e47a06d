package config

import (
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	dsn := os.Getenv("DB_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("Failed to connect database")
	}

	DB = db
}

// EnsureReminderConstraints creates the partial unique index that keeps at
// most one PENDING reminder per (beneficiary, vaccine, dose, type). Two
// concurrent scheduling calls can both pass the pending check; this index
// is what stops the second insert.
func EnsureReminderConstraints() error {
	return DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_pending_reminder
		ON vaccination_reminders (beneficiary_id, vaccine_code, dose_number, reminder_type)
		WHERE status = 'pending' AND deleted_at IS NULL
	`).Error
}
