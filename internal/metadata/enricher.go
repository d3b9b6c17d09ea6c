// Package metadata enriches catalog entries from external book databases.
// OpenLibrary is the only provider right now.
package metadata

import (
	"context"
	"fmt"

	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
)

// Provider fetches book metadata from an external catalogue.
type Provider interface {
	SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
	SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
}

// Catalog is the slice of the book store the enricher needs.
type Catalog interface {
	GetByID(id uint) (*entities.Book, error)
	UpdateMetadata(id uint, fields books.MetadataFields) error
	ListMissingMetadata() ([]entities.Book, error)
}

// CoverInvalidator drops a cached cover when its source URL changes.
type CoverInvalidator interface {
	InvalidateCover(bookID uint) error
}

// EnrichmentResult describes what a single enrichment changed.
type EnrichmentResult struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
	Source        string         `json:"source"`
	SearchMethod  string         `json:"search_method"` // "isbn" or "title"
}

// BulkEnrichmentResult summarises an enrich-all run.
type BulkEnrichmentResult struct {
	TotalBooks int      `json:"total_books"`
	Enriched   int      `json:"enriched"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// Enricher fills empty catalog fields from an external provider. Existing
// values are never overwritten except the cover, which follows the provider.
type Enricher struct {
	provider         Provider
	catalog          Catalog
	coverInvalidator CoverInvalidator
}

// NewEnricher creates a new Enricher over the given provider and catalog.
func NewEnricher(provider Provider, catalog Catalog) *Enricher {
	return &Enricher{
		provider: provider,
		catalog:  catalog,
	}
}

// SetCoverInvalidator sets the cover cache invalidator (optional).
func (e *Enricher) SetCoverInvalidator(invalidator CoverInvalidator) {
	e.coverInvalidator = invalidator
}

// EnrichBook fetches metadata for one book and persists the missing fields.
// It tries ISBN first when the book has one, then falls back to a
// title+author search.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) (*EnrichmentResult, error) {
	book, err := e.catalog.GetByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	var metadata *BookMetadata
	searchMethod := "title"

	if book.ISBN != "" {
		metadata, err = e.provider.SearchByISBN(ctx, book.ISBN)
		if err == nil {
			searchMethod = "isbn"
		}
	}

	if metadata == nil {
		metadata, err = e.provider.SearchByTitle(ctx, book.Title, book.Author)
		if err != nil {
			return nil, fmt.Errorf("metadata search failed: %w", err)
		}
	}

	fields, fieldsUpdated := buildUpdates(book, metadata)

	if len(fieldsUpdated) > 0 {
		if fields.CoverImage != nil && e.coverInvalidator != nil {
			_ = e.coverInvalidator.InvalidateCover(bookID)
		}

		if err := e.catalog.UpdateMetadata(bookID, fields); err != nil {
			return nil, fmt.Errorf("update book metadata: %w", err)
		}

		book, err = e.catalog.GetByID(bookID)
		if err != nil {
			return nil, fmt.Errorf("refresh book: %w", err)
		}
	}

	return &EnrichmentResult{
		Book:          book,
		FieldsUpdated: fieldsUpdated,
		Source:        "openlibrary",
		SearchMethod:  searchMethod,
	}, nil
}

// EnrichAllMissing enriches every book missing a cover, description, genre
// or publication year. Aborts between books when ctx is cancelled.
func (e *Enricher) EnrichAllMissing(ctx context.Context) (*BulkEnrichmentResult, error) {
	pending, err := e.catalog.ListMissingMetadata()
	if err != nil {
		return nil, fmt.Errorf("list books missing metadata: %w", err)
	}

	result := &BulkEnrichmentResult{
		TotalBooks: len(pending),
	}

	for _, book := range pending {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "operation cancelled")
			return result, ctx.Err()
		default:
		}

		enrichResult, err := e.EnrichBook(ctx, book.ID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", book.Title, err))
			continue
		}

		if len(enrichResult.FieldsUpdated) > 0 {
			result.Enriched++
		} else {
			result.Skipped++
		}
	}

	return result, nil
}

// buildUpdates compares the stored book with the fetched metadata and
// returns only fields worth writing.
func buildUpdates(book *entities.Book, metadata *BookMetadata) (books.MetadataFields, []string) {
	var fields books.MetadataFields
	var fieldsUpdated []string

	if book.ISBN == "" && metadata.ISBN != "" {
		fields.ISBN = &metadata.ISBN
		fieldsUpdated = append(fieldsUpdated, "isbn")
	}

	if metadata.CoverImage != "" && book.CoverImage != metadata.CoverImage {
		fields.CoverImage = &metadata.CoverImage
		fieldsUpdated = append(fieldsUpdated, "cover_image")
	}

	if book.Genre == "" && metadata.Genre != "" {
		fields.Genre = &metadata.Genre
		fieldsUpdated = append(fieldsUpdated, "genre")
	}

	if book.Description == "" && metadata.Description != "" {
		fields.Description = &metadata.Description
		fieldsUpdated = append(fieldsUpdated, "description")
	}

	if book.PublicationYear == 0 && metadata.PublicationYear > 0 {
		fields.PublicationYear = &metadata.PublicationYear
		fieldsUpdated = append(fieldsUpdated, "publication_year")
	}

	return fields, fieldsUpdated
}
