// Package activities provides database operations for the append-only
// activity log.
package activities

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// DefaultLimit caps a recency listing when the caller does not say.
const DefaultLimit = 50

// Repository handles all activity log database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Log appends an activity entry.
func (r *Repository) Log(activity *entities.Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	return r.db.Create(activity).Error
}

// Recent retrieves the latest entries, most recent first.
func (r *Repository) Recent(limit int) ([]entities.Activity, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var rows []entities.Activity
	err := r.db.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// Delete removes a single entry by id.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Activity{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAll clears the log. Gated behind admin re-authentication at the
// gateway.
func (r *Repository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&entities.Activity{}).Error
}

// DeleteOlderThan prunes entries past the retention cutoff. Returns the
// number of deleted rows.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.Activity{})
	return result.RowsAffected, result.Error
}

// IsNotFound reports whether err is the store's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
