// Package submissions provides database operations for visitor feedback and
// the notification inbox, backed by the secondary store.
package submissions

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Repository handles ratings, contact submissions and notifications.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateRating appends a star rating.
func (r *Repository) CreateRating(rating *entities.Rating) error {
	return r.db.Create(rating).Error
}

// ListRatings returns all ratings, most recent first.
func (r *Repository) ListRatings() ([]entities.Rating, error) {
	var ratings []entities.Rating
	err := r.db.Order("created_at DESC").Find(&ratings).Error
	return ratings, err
}

// ReplyToRating sets the admin reply on a rating.
func (r *Repository) ReplyToRating(id uint, reply string) error {
	result := r.db.Model(&entities.Rating{}).Where("id = ?", id).Update("reply", reply)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAllRatings wipes the ratings table. Gated behind admin
// re-authentication at the gateway.
func (r *Repository) DeleteAllRatings() error {
	return r.db.Where("1 = 1").Delete(&entities.Rating{}).Error
}

// CreateContact appends a contact form submission.
func (r *Repository) CreateContact(c *entities.ContactSubmission) error {
	return r.db.Create(c).Error
}

// ListContacts returns all contact submissions, most recent first.
func (r *Repository) ListContacts() ([]entities.ContactSubmission, error) {
	var contacts []entities.ContactSubmission
	err := r.db.Order("created_at DESC").Find(&contacts).Error
	return contacts, err
}

// CreateNotification appends an inbox entry.
func (r *Repository) CreateNotification(n *entities.Notification) error {
	return r.db.Create(n).Error
}

// ListNotifications returns the inbox, most recent first.
func (r *Repository) ListNotifications() ([]entities.Notification, error) {
	var notifications []entities.Notification
	err := r.db.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

// MarkNotificationRead flips the read flag. The only mutation notifications
// allow.
func (r *Repository) MarkNotificationRead(id uint) error {
	result := r.db.Model(&entities.Notification{}).Where("id = ?", id).Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err is the store's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
