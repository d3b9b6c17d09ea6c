package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
)

type mockProvider struct {
	searchByISBNResult  *BookMetadata
	searchByISBNError   error
	searchByTitleResult *BookMetadata
	searchByTitleError  error

	isbnCalls  int
	titleCalls int
}

func (m *mockProvider) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	m.isbnCalls++
	return m.searchByISBNResult, m.searchByISBNError
}

func (m *mockProvider) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	m.titleCalls++
	return m.searchByTitleResult, m.searchByTitleError
}

type mockCatalog struct {
	book        *entities.Book
	getError    error
	updateError error
	updated     map[string]any
	pending     []entities.Book
}

func (m *mockCatalog) GetByID(id uint) (*entities.Book, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.book, nil
}

func (m *mockCatalog) UpdateMetadata(id uint, fields books.MetadataFields) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.updated = make(map[string]any)
	if fields.ISBN != nil {
		m.updated["isbn"] = *fields.ISBN
		m.book.ISBN = *fields.ISBN
	}
	if fields.CoverImage != nil {
		m.updated["cover_image"] = *fields.CoverImage
		m.book.CoverImage = *fields.CoverImage
	}
	if fields.Genre != nil {
		m.updated["genre"] = *fields.Genre
		m.book.Genre = *fields.Genre
	}
	if fields.Description != nil {
		m.updated["description"] = *fields.Description
		m.book.Description = *fields.Description
	}
	if fields.PublicationYear != nil {
		m.updated["publication_year"] = *fields.PublicationYear
		m.book.PublicationYear = *fields.PublicationYear
	}
	return nil
}

func (m *mockCatalog) ListMissingMetadata() ([]entities.Book, error) {
	return m.pending, nil
}

func TestEnrichBook_WithISBN(t *testing.T) {
	catalog := &mockCatalog{
		book: &entities.Book{
			ID:     1,
			Title:  "Effective Java",
			Author: "Joshua Bloch",
			ISBN:   "9780134685991",
		},
	}
	provider := &mockProvider{
		searchByISBNResult: &BookMetadata{
			Title:           "Effective Java",
			Author:          "Joshua Bloch",
			CoverImage:      "https://covers.openlibrary.org/b/isbn/9780134685991-L.jpg",
			Genre:           "Programming",
			Description:     "The definitive guide to Java best practices.",
			PublicationYear: 2018,
		},
	}

	enricher := NewEnricher(provider, catalog)
	result, err := enricher.EnrichBook(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "isbn", result.SearchMethod)
	assert.Equal(t, "openlibrary", result.Source)
	assert.ElementsMatch(t,
		[]string{"cover_image", "genre", "description", "publication_year"},
		result.FieldsUpdated)
	assert.Equal(t, 2018, catalog.book.PublicationYear)
	assert.Equal(t, "Programming", catalog.book.Genre)
	assert.Zero(t, provider.titleCalls)
}

func TestEnrichBook_FallsBackToTitleSearch(t *testing.T) {
	catalog := &mockCatalog{
		book: &entities.Book{ID: 2, Title: "Dune", Author: "Frank Herbert"},
	}
	provider := &mockProvider{
		searchByTitleResult: &BookMetadata{
			Title:           "Dune",
			Author:          "Frank Herbert",
			ISBN:            "9780441013593",
			PublicationYear: 1965,
		},
	}

	enricher := NewEnricher(provider, catalog)
	result, err := enricher.EnrichBook(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "title", result.SearchMethod)
	assert.Equal(t, "9780441013593", catalog.book.ISBN)
	assert.Zero(t, provider.isbnCalls)
}

func TestEnrichBook_ISBNFailureFallsBack(t *testing.T) {
	catalog := &mockCatalog{
		book: &entities.Book{ID: 3, Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"},
	}
	provider := &mockProvider{
		searchByISBNError:   errors.New("openlibrary down"),
		searchByTitleResult: &BookMetadata{Title: "Dune", PublicationYear: 1965},
	}

	enricher := NewEnricher(provider, catalog)
	result, err := enricher.EnrichBook(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, "title", result.SearchMethod)
	assert.Equal(t, 1, provider.isbnCalls)
	assert.Equal(t, 1, provider.titleCalls)
	assert.Equal(t, 1965, catalog.book.PublicationYear)
}

func TestEnrichBook_ExistingFieldsUntouched(t *testing.T) {
	catalog := &mockCatalog{
		book: &entities.Book{
			ID:              4,
			Title:           "Dune",
			Author:          "Frank Herbert",
			ISBN:            "9780441013593",
			Genre:           "Science Fiction",
			Description:     "A desert planet epic.",
			PublicationYear: 1965,
			CoverImage:      "https://covers.openlibrary.org/b/isbn/9780441013593-L.jpg",
		},
	}
	provider := &mockProvider{
		searchByISBNResult: &BookMetadata{
			Genre:           "Fiction",
			Description:     "Different description.",
			PublicationYear: 1966,
			CoverImage:      "https://covers.openlibrary.org/b/isbn/9780441013593-L.jpg",
		},
	}

	enricher := NewEnricher(provider, catalog)
	result, err := enricher.EnrichBook(context.Background(), 4)
	require.NoError(t, err)

	assert.Empty(t, result.FieldsUpdated)
	assert.Equal(t, "Science Fiction", catalog.book.Genre)
	assert.Equal(t, 1965, catalog.book.PublicationYear)
}

func TestEnrichBook_CoverChangeInvalidatesCache(t *testing.T) {
	catalog := &mockCatalog{
		book: &entities.Book{
			ID:         5,
			Title:      "Dune",
			ISBN:       "9780441013593",
			CoverImage: "https://example.com/old-cover.jpg",
		},
	}
	provider := &mockProvider{
		searchByISBNResult: &BookMetadata{
			CoverImage: "https://covers.openlibrary.org/b/isbn/9780441013593-L.jpg",
		},
	}

	invalidated := []uint{}
	enricher := NewEnricher(provider, catalog)
	enricher.SetCoverInvalidator(coverInvalidatorFunc(func(bookID uint) error {
		invalidated = append(invalidated, bookID)
		return nil
	}))

	_, err := enricher.EnrichBook(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []uint{5}, invalidated)
}

type coverInvalidatorFunc func(bookID uint) error

func (f coverInvalidatorFunc) InvalidateCover(bookID uint) error { return f(bookID) }

func TestEnrichBook_SearchFailure(t *testing.T) {
	catalog := &mockCatalog{
		book: &entities.Book{ID: 6, Title: "Unknown Book"},
	}
	provider := &mockProvider{
		searchByTitleError: errors.New("no results"),
	}

	enricher := NewEnricher(provider, catalog)
	_, err := enricher.EnrichBook(context.Background(), 6)
	assert.Error(t, err)
}

func TestEnrichAllMissing(t *testing.T) {
	catalog := &mockCatalog{
		book: &entities.Book{ID: 1, Title: "Dune", Author: "Frank Herbert"},
		pending: []entities.Book{
			{ID: 1, Title: "Dune", Author: "Frank Herbert"},
		},
	}
	provider := &mockProvider{
		searchByTitleResult: &BookMetadata{PublicationYear: 1965},
	}

	enricher := NewEnricher(provider, catalog)
	result, err := enricher.EnrichAllMissing(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalBooks)
	assert.Equal(t, 1, result.Enriched)
	assert.Zero(t, result.Failed)
}

func TestEnrichAllMissing_Cancelled(t *testing.T) {
	catalog := &mockCatalog{
		book:    &entities.Book{ID: 1, Title: "Dune"},
		pending: []entities.Book{{ID: 1, Title: "Dune"}},
	}
	provider := &mockProvider{searchByTitleResult: &BookMetadata{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enricher := NewEnricher(provider, catalog)
	result, err := enricher.EnrichAllMissing(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, result.Errors, "operation cancelled")
}
