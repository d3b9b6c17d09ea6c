// Package lending owns the borrow/return ledger. A book has at most one
// active borrowing at a time; the availability flip that guards this is a
// single conditional UPDATE, so two concurrent borrows of the same book
// cannot both succeed.
package lending

import (
	"fmt"
	"time"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/apperr"
	bookrepo "github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/borrowings"
	"github.com/openshelf/openshelf/internal/entities"
)

// DefaultLoanPeriodDays is used when no loan period is configured.
const DefaultLoanPeriodDays = 14

type Service struct {
	books      *bookrepo.Repository
	borrowings *borrowings.Repository
	recorder   *activity.Recorder
	loanPeriod time.Duration
}

func NewService(books *bookrepo.Repository, ledger *borrowings.Repository, recorder *activity.Recorder, loanPeriodDays int) *Service {
	if loanPeriodDays <= 0 {
		loanPeriodDays = DefaultLoanPeriodDays
	}
	return &Service{
		books:      books,
		borrowings: ledger,
		recorder:   recorder,
		loanPeriod: time.Duration(loanPeriodDays) * 24 * time.Hour,
	}
}

// Borrow checks the book out to userID. The status flip to borrowed only
// succeeds if the book is still available and not deleted at that moment;
// the ledger row is inserted only after the flip lands.
func (s *Service) Borrow(userID, bookID uint) (*entities.Borrowing, error) {
	book, err := s.books.GetByID(bookID)
	if err != nil {
		if bookrepo.IsNotFound(err) {
			return nil, apperr.NotFound("book %d not found", bookID)
		}
		return nil, apperr.Internal(err, "loading book")
	}
	if book.IsDeleted {
		return nil, apperr.NotFound("book %d not found", bookID)
	}
	if book.Status != entities.BookStatusAvailable {
		return nil, apperr.Conflict("book %q is not available", book.Title)
	}

	existing, err := s.borrowings.GetActive(userID, bookID)
	if err != nil && !borrowings.IsNotFound(err) {
		return nil, apperr.Internal(err, "checking active borrowing")
	}
	if existing != nil {
		return nil, apperr.Conflict("you have already borrowed %q", book.Title)
	}

	flipped, err := s.books.MarkBorrowed(bookID)
	if err != nil {
		return nil, apperr.Internal(err, "marking book borrowed")
	}
	if !flipped {
		return nil, apperr.Conflict("book %q is not available", book.Title)
	}

	now := time.Now()
	borrowing := &entities.Borrowing{
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: now,
		DueDate:    now.Add(s.loanPeriod),
		Status:     entities.BorrowingStatusActive,
	}
	if err := s.borrowings.Create(borrowing); err != nil {
		// hand the copy back rather than stranding it in borrowed state
		if revertErr := s.books.MarkAvailable(bookID); revertErr != nil {
			return nil, apperr.Internal(revertErr, "reverting book status after failed borrow")
		}
		return nil, apperr.Internal(err, "creating borrowing")
	}

	s.recorder.Activity(fmt.Sprintf("Book %q borrowed", book.Title), &userID)
	return borrowing, nil
}

// Return closes the caller's active borrowing of bookID and makes the book
// available again.
func (s *Service) Return(userID, bookID uint) (*entities.Borrowing, error) {
	borrowing, err := s.borrowings.GetActive(userID, bookID)
	if err != nil {
		if borrowings.IsNotFound(err) {
			return nil, apperr.NotFound("no active borrowing for book %d", bookID)
		}
		return nil, apperr.Internal(err, "loading borrowing")
	}

	now := time.Now()
	if err := s.borrowings.MarkReturned(borrowing.ID, now); err != nil {
		if borrowings.IsNotFound(err) {
			return nil, apperr.NotFound("no active borrowing for book %d", bookID)
		}
		return nil, apperr.Internal(err, "closing borrowing")
	}

	if err := s.books.MarkAvailable(bookID); err != nil {
		return nil, apperr.Internal(err, "marking book available")
	}

	borrowing.ReturnDate = &now
	borrowing.Status = entities.BorrowingStatusReturned

	book, err := s.books.GetByID(bookID)
	if err == nil {
		s.recorder.Activity(fmt.Sprintf("Book %q returned", book.Title), &userID)
	}
	return borrowing, nil
}

// ListBorrowed returns the caller's active loans, most recent first.
func (s *Service) ListBorrowed(userID uint) ([]entities.BorrowedBook, error) {
	loans, err := s.borrowings.ListActiveForUser(userID)
	if err != nil {
		return nil, apperr.Internal(err, "listing borrowed books")
	}
	return loans, nil
}
