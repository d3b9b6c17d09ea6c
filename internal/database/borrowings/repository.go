// Package borrowings provides database operations for the lending ledger.
package borrowings

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Repository handles all borrowing ledger database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new ledger row.
func (r *Repository) Create(b *entities.Borrowing) error {
	return r.db.Create(b).Error
}

// GetActive retrieves the active borrowing for (userID, bookID), if any.
func (r *Repository) GetActive(userID, bookID uint) (*entities.Borrowing, error) {
	var b entities.Borrowing
	err := r.db.
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, entities.BorrowingStatusActive).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// HasActiveForBook reports whether any user currently holds the book.
func (r *Repository) HasActiveForBook(bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Borrowing{}).
		Where("book_id = ? AND status = ?", bookID, entities.BorrowingStatusActive).
		Count(&count).Error
	return count > 0, err
}

// MarkReturned closes a ledger row: sets the return date and flips its
// status. Rows are never deleted.
func (r *Repository) MarkReturned(id uint, returnedAt time.Time) error {
	result := r.db.Model(&entities.Borrowing{}).
		Where("id = ? AND status = ?", id, entities.BorrowingStatusActive).
		Updates(map[string]any{
			"return_date": returnedAt,
			"status":      entities.BorrowingStatusReturned,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListActiveForUser joins the user's active borrowings to their book rows,
// most recent borrow first.
func (r *Repository) ListActiveForUser(userID uint) ([]entities.BorrowedBook, error) {
	var rows []entities.BorrowedBook
	err := r.db.Table("borrowings").
		Select(`borrowings.id AS borrowing_id, books.id AS book_id, books.title, books.author,
			books.isbn, books.cover_image, borrowings.borrow_date, borrowings.due_date, borrowings.return_date`).
		Joins("JOIN books ON books.id = borrowings.book_id").
		Where("borrowings.user_id = ? AND borrowings.status = ?", userID, entities.BorrowingStatusActive).
		Order("borrowings.borrow_date DESC").
		Scan(&rows).Error
	return rows, err
}

// GetByID retrieves a single ledger row.
func (r *Repository) GetByID(id uint) (*entities.Borrowing, error) {
	var b entities.Borrowing
	err := r.db.First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// IsNotFound reports whether err is the store's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
