package migrations

import "gorm.io/gorm"

// migration001Up creates the extensions the schema depends on
func migration001Up(db *gorm.DB) error {
	return db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
}

// migration001Down is intentionally a no-op
func migration001Down(db *gorm.DB) error {
	// NOTE: We don't drop the UUID extension as it might be used by other applications
	return nil
}
