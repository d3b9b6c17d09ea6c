// Package users provides database operations for user accounts.
package users

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var sortableColumns = map[string]bool{
	"name":       true,
	"email":      true,
	"role":       true,
	"status":     true,
	"created_at": true,
	"updated_at": true,
}

// ListFilter narrows and orders a user listing.
type ListFilter struct {
	Search         string
	Status         entities.UserStatus
	Role           entities.UserRole
	SortBy         string
	SortDesc       bool
	IncludeDeleted bool
}

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a user by ID, soft-deleted or not.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a non-deleted user by email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ? AND is_deleted = ?", email, false).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether a non-deleted user other than excludeID
// already uses the email.
func (r *Repository) EmailExists(email string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&entities.User{}).Where("email = ? AND is_deleted = ?", email, false)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// List retrieves users matching the filter. Search covers name and email;
// default ordering is most-recently-created first.
func (r *Repository) List(filter ListFilter) ([]entities.User, error) {
	query := r.db.Model(&entities.User{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	if sortableColumns[filter.SortBy] {
		direction := "ASC"
		if filter.SortDesc {
			direction = "DESC"
		}
		query = query.Order(filter.SortBy + " " + direction)
	} else {
		query = query.Order("created_at DESC")
	}

	var users []entities.User
	err := query.Find(&users).Error
	return users, err
}

func (r *Repository) Create(user *entities.User) error {
	return r.db.Create(user).Error
}

func (r *Repository) Update(user *entities.User) error {
	return r.db.Save(user).Error
}

// SoftDelete moves a user to the trash.
func (r *Repository) SoftDelete(id uint) error {
	now := time.Now()
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
		"is_deleted": true,
		"deleted_at": now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Restore(id uint) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(map[string]any{
		"is_deleted": false,
		"deleted_at": nil,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) DeletePermanently(id uint) error {
	result := r.db.Delete(&entities.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAll wipes every user row. Gated behind admin re-authentication at
// the gateway.
func (r *Repository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&entities.User{}).Error
}

// IsNotFound reports whether err is the store's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
