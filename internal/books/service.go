// Package books holds the catalog lifecycle rules: field validation, ISBN
// checksum and uniqueness enforcement, soft-delete/restore semantics, and
// the bulk import path.
package books

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/apperr"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/importers"
	"github.com/openshelf/openshelf/internal/isbn"
)

// MinPublicationYear is the oldest year the catalog accepts.
const MinPublicationYear = 1000

// BookInput carries the mutable fields for create and update.
type BookInput struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Genre           string `json:"genre"`
	PublicationYear int    `json:"publication_year"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	CoverImage      string `json:"cover_image"`
	Quantity        int    `json:"quantity"`
}

// ImportResult is the aggregate outcome of a bulk import.
type ImportResult struct {
	AddedCount int      `json:"addedCount"`
	Errors     []string `json:"errors"`
}

type Service struct {
	repo     *books.Repository
	parser   importers.Parser
	recorder *activity.Recorder
}

func NewService(repo *books.Repository, parser importers.Parser, recorder *activity.Recorder) *Service {
	return &Service{
		repo:     repo,
		parser:   parser,
		recorder: recorder,
	}
}

// Create validates and persists a new book. The ISBN must pass the checksum
// and be unused by any other non-deleted book.
func (s *Service) Create(input BookInput, actorID *uint) (*entities.Book, error) {
	book, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ISBNExists(isbn.Normalize(book.ISBN), 0)
	if err != nil {
		return nil, apperr.Internal(err, "checking ISBN uniqueness")
	}
	if taken {
		return nil, apperr.Conflict("a book with ISBN %s already exists", book.ISBN)
	}

	if err := s.repo.Create(book); err != nil {
		return nil, apperr.Internal(err, "creating book")
	}

	s.recorder.Activity(fmt.Sprintf("Book %q added", book.Title), actorID)
	s.recorder.Notify(entities.NotificationBookAdded, fmt.Sprintf("New book: %s", book.Title), &book.ID)
	return book, nil
}

// Update replaces the mutable fields of an existing book.
func (s *Service) Update(id uint, input BookInput, actorID *uint) (*entities.Book, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		if books.IsNotFound(err) {
			return nil, apperr.NotFound("book %d not found", id)
		}
		return nil, apperr.Internal(err, "loading book")
	}

	validated, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ISBNExists(isbn.Normalize(validated.ISBN), id)
	if err != nil {
		return nil, apperr.Internal(err, "checking ISBN uniqueness")
	}
	if taken {
		return nil, apperr.Conflict("a book with ISBN %s already exists", validated.ISBN)
	}

	existing.Title = validated.Title
	existing.Author = validated.Author
	existing.ISBN = validated.ISBN
	existing.Genre = validated.Genre
	existing.PublicationYear = validated.PublicationYear
	existing.Description = validated.Description
	existing.Status = validated.Status
	existing.CoverImage = validated.CoverImage
	existing.Quantity = validated.Quantity

	if err := s.repo.Update(existing); err != nil {
		return nil, apperr.Internal(err, "updating book")
	}

	s.recorder.Activity(fmt.Sprintf("Book %q updated", existing.Title), actorID)
	return existing, nil
}

// Delete removes a book, soft by default. Soft deletion leaves Status
// untouched so a restore brings the book back exactly as it was.
func (s *Service) Delete(id uint, permanent bool, actorID *uint) error {
	book, err := s.repo.GetByID(id)
	if err != nil {
		if books.IsNotFound(err) {
			return apperr.NotFound("book %d not found", id)
		}
		return apperr.Internal(err, "loading book")
	}

	if permanent {
		if err := s.repo.DeletePermanently(id); err != nil {
			return apperr.Internal(err, "deleting book")
		}
		s.recorder.Activity(fmt.Sprintf("Book %q permanently deleted", book.Title), actorID)
		return nil
	}

	if err := s.repo.SoftDelete(id); err != nil {
		if books.IsNotFound(err) {
			return apperr.NotFound("book %d not found", id)
		}
		return apperr.Internal(err, "deleting book")
	}
	s.recorder.Activity(fmt.Sprintf("Book %q moved to trash", book.Title), actorID)
	return nil
}

// Restore clears the soft-delete flag.
func (s *Service) Restore(id uint, actorID *uint) (*entities.Book, error) {
	if err := s.repo.Restore(id); err != nil {
		if books.IsNotFound(err) {
			return nil, apperr.NotFound("book %d not found", id)
		}
		return nil, apperr.Internal(err, "restoring book")
	}
	book, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.Internal(err, "loading restored book")
	}
	s.recorder.Activity(fmt.Sprintf("Book %q restored from trash", book.Title), actorID)
	return book, nil
}

func (s *Service) Get(id uint) (*entities.Book, error) {
	book, err := s.repo.GetByID(id)
	if err != nil {
		if books.IsNotFound(err) {
			return nil, apperr.NotFound("book %d not found", id)
		}
		return nil, apperr.Internal(err, "loading book")
	}
	return book, nil
}

func (s *Service) List(filter books.ListFilter) ([]entities.Book, error) {
	result, err := s.repo.List(filter)
	if err != nil {
		return nil, apperr.Internal(err, "listing books")
	}
	return result, nil
}

// DeleteAll wipes the catalog. Callers gate this behind admin re-auth.
func (s *Service) DeleteAll(actorID *uint) error {
	if err := s.repo.DeleteAll(); err != nil {
		return apperr.Internal(err, "deleting all books")
	}
	s.recorder.Activity("All books deleted", actorID)
	return nil
}

// Import parses a bulk payload and inserts each well-formed record with
// default status available. Malformed records are skipped and reported;
// one aggregate activity and notification covers the whole batch.
func (s *Service) Import(payload []byte, actorID *uint) (*ImportResult, error) {
	records, err := s.parser.Parse(payload)
	if err != nil {
		return nil, apperr.Validation("could not parse import payload: %v", err)
	}

	result := &ImportResult{Errors: []string{}}
	for i, record := range records {
		if err := s.importOne(record); err != nil {
			// A store failure aborts the batch; only per-record
			// validation problems are collected and skipped.
			if apperr.IsKind(err, apperr.KindInternal) {
				return nil, err
			}
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: %v", i+1, err))
			continue
		}
		result.AddedCount++
	}

	if result.AddedCount > 0 {
		message := fmt.Sprintf("Imported %d books", result.AddedCount)
		s.recorder.Activity(message, actorID)
		s.recorder.Notify(entities.NotificationBooksImported, message, nil)
	}
	return result, nil
}

func (s *Service) importOne(record importers.Record) error {
	input := BookInput{
		Title:           record.Title,
		Author:          record.Author,
		ISBN:            record.ISBN,
		Genre:           record.Genre,
		PublicationYear: record.PublicationYear,
		Description:     record.Description,
		CoverImage:      record.CoverImage,
		Quantity:        record.Quantity,
	}

	book, err := s.validateImport(input)
	if err != nil {
		return err
	}

	if book.ISBN != "" {
		taken, err := s.repo.ISBNExists(isbn.Normalize(book.ISBN), 0)
		if err != nil {
			return apperr.Internal(err, "checking ISBN uniqueness")
		}
		if taken {
			return fmt.Errorf("ISBN %s already exists", book.ISBN)
		}
	}
	if err := s.repo.Create(book); err != nil {
		return apperr.Internal(err, "creating book")
	}
	return nil
}

// validate enforces the full create/update rules: title, author and ISBN
// required, ISBN checksum, year range, closed status domain.
func (s *Service) validate(input BookInput) (*entities.Book, error) {
	book, err := buildBook(input)
	if err != nil {
		return nil, err
	}
	if book.ISBN == "" {
		return nil, apperr.Validation("isbn is required")
	}
	return book, nil
}

// validateImport is the relaxed per-record variant: ISBN is optional but
// still checksum-validated when present. Errors are plain so the caller
// can collect them per record.
func (s *Service) validateImport(input BookInput) (*entities.Book, error) {
	book, err := buildBook(input)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, errors.New(appErr.Message)
		}
		return nil, err
	}
	return book, nil
}

func buildBook(input BookInput) (*entities.Book, error) {
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if author == "" {
		return nil, apperr.Validation("author is required")
	}

	code := isbn.Normalize(input.ISBN)
	if code != "" && !isbn.Valid(code) {
		return nil, apperr.Validation("invalid ISBN: %s", input.ISBN)
	}

	if input.PublicationYear != 0 {
		currentYear := time.Now().Year()
		if input.PublicationYear < MinPublicationYear || input.PublicationYear > currentYear {
			return nil, apperr.Validation("publication year must be between %d and %d", MinPublicationYear, currentYear)
		}
	}

	status := entities.BookStatus(strings.TrimSpace(input.Status))
	if status == "" {
		status = entities.BookStatusAvailable
	}
	if !entities.ValidBookStatus(status) {
		return nil, apperr.Validation("invalid status: %s", input.Status)
	}

	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	return &entities.Book{
		Title:           title,
		Author:          author,
		ISBN:            strings.TrimSpace(input.ISBN),
		Genre:           strings.TrimSpace(input.Genre),
		PublicationYear: input.PublicationYear,
		Description:     strings.TrimSpace(input.Description),
		Status:          status,
		CoverImage:      strings.TrimSpace(input.CoverImage),
		Quantity:        quantity,
	}, nil
}
