package database

import (
	"fmt"

	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ActiveIdentityIndex backs the one-active-registration-per-email rule.
// identity_key is NULL when the event allows multiple registrations.
const ActiveIdentityIndex = `
	CREATE UNIQUE INDEX IF NOT EXISTS ` + models.IdentityIndexName + `
	ON registrations (event_id, identity_key)
	WHERE identity_key IS NOT NULL AND status NOT IN ('rejected', 'duplicate_rejected')
`

func NewPostgresDB(dsn string, log *zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info().Msg("database migrated")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Event{}, &models.Registration{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := db.Exec(ActiveIdentityIndex).Error; err != nil {
		return fmt.Errorf("create identity index: %w", err)
	}
	return nil
}
