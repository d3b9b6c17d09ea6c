// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID(123)
package books

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Sortable columns accepted from the list endpoint. Anything else falls back
// to the default ordering.
var sortableColumns = map[string]bool{
	"title":            true,
	"author":           true,
	"isbn":             true,
	"genre":            true,
	"publication_year": true,
	"status":           true,
	"created_at":       true,
	"updated_at":       true,
}

// ListFilter narrows and orders a catalog listing.
type ListFilter struct {
	Search         string
	Status         entities.BookStatus
	SortBy         string
	SortDesc       bool
	IncludeDeleted bool
}

// Repository handles all book catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a book by its ID, soft-deleted or not.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List retrieves books matching the filter. Free-text search covers title,
// author and ISBN; default ordering is most-recently-created first.
func (r *Repository) List(filter ListFilter) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?) OR isbn LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var books []entities.Book
	err := query.Find(&books).Error
	return books, err
}

// Create inserts a new book row.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// Update persists the mutable fields of an existing book and touches
// updated_at.
func (r *Repository) Update(book *entities.Book) error {
	return r.db.Save(book).Error
}

// ISBNExists reports whether a non-deleted book other than excludeID already
// uses the normalized ISBN.
func (r *Repository) ISBNExists(normalizedISBN string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&entities.Book{}).
		Where("UPPER(REPLACE(REPLACE(isbn, '-', ''), ' ', '')) = ? AND is_deleted = ?", strings.ToUpper(normalizedISBN), false)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// MetadataFields carries catalog fields filled in by enrichment. Nil
// pointers leave the column untouched.
type MetadataFields struct {
	ISBN            *string
	Genre           *string
	PublicationYear *int
	Description     *string
	CoverImage      *string
}

// UpdateMetadata applies the set fields to a single book row.
func (r *Repository) UpdateMetadata(id uint, fields MetadataFields) error {
	updates := map[string]any{}
	if fields.ISBN != nil {
		updates["isbn"] = *fields.ISBN
	}
	if fields.Genre != nil {
		updates["genre"] = *fields.Genre
	}
	if fields.PublicationYear != nil {
		updates["publication_year"] = *fields.PublicationYear
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.CoverImage != nil {
		updates["cover_image"] = *fields.CoverImage
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListMissingMetadata returns non-deleted books with an empty cover,
// description, genre or publication year.
func (r *Repository) ListMissingMetadata() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Where("is_deleted = ?", false).
		Where("cover_image = '' OR description = '' OR genre = '' OR publication_year = 0").
		Order("id ASC").
		Find(&books).Error
	return books, err
}

// SoftDelete marks a book as trashed without touching its status.
func (r *Repository) SoftDelete(id uint) error {
	now := time.Now()
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(map[string]any{
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

// Restore brings a soft-deleted book back, original fields intact.
func (r *Repository) Restore(id uint) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(map[string]any{
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

// DeletePermanently removes the row entirely.
func (r *Repository) DeletePermanently(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAll wipes the catalog. Gated behind admin re-authentication at the
// gateway.
func (r *Repository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&entities.Book{}).Error
}

// MarkBorrowed atomically flips an available, non-deleted book to borrowed.
// Returns false when the book was not in a borrowable state, which closes
// the double-borrow race window: of two concurrent borrows only one update
// can affect the row.
func (r *Repository) MarkBorrowed(id uint) (bool, error) {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND status = ? AND is_deleted = ?", id, entities.BookStatusAvailable, false).
		Update("status", entities.BookStatusBorrowed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkAvailable flips a borrowed book back to available.
func (r *Repository) MarkAvailable(id uint) error {
	return r.db.Model(&entities.Book{}).
		Where("id = ? AND status = ?", id, entities.BookStatusBorrowed).
		Update("status", entities.BookStatusAvailable).Error
}

// IsNotFound reports whether err is the store's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
