package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openshelf/openshelf/internal/entities"
)

// SubmissionsDatabase wraps the secondary store for visitor feedback and
// notifications. Kept as a separate file so wiping the catalog never touches
// the feedback history, and vice versa.
type SubmissionsDatabase struct {
	DB *gorm.DB
}

func NewSubmissionsDatabase(dbPath string) (*SubmissionsDatabase, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to submissions database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Rating{},
		&entities.ContactSubmission{},
		&entities.Notification{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate submissions database: %w", err)
	}

	log.Printf("Submissions database initialized at %s", dbPath)

	return &SubmissionsDatabase{DB: db}, nil
}

func (d *SubmissionsDatabase) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
