// Package exporters renders the book catalog to downloadable formats.
// The CSV layout mirrors what the importer accepts, so an export can be
// re-imported as-is.
package exporters

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/openshelf/openshelf/internal/entities"
)

// Exporter renders a set of books to a wire format.
type Exporter interface {
	ContentType() string
	FileExtension() string
	Export(w io.Writer, books []entities.Book) error
}

// ForFormat returns the exporter for a format name ("csv" or "json").
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "csv", "":
		return &CSVExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	}
	return nil, fmt.Errorf("unsupported export format: %q", format)
}

// CSVExporter writes one header row followed by one row per book.
type CSVExporter struct{}

func (e *CSVExporter) ContentType() string   { return "text/csv" }
func (e *CSVExporter) FileExtension() string { return "csv" }

var csvHeader = []string{
	"title", "author", "isbn", "genre", "publication_year",
	"description", "cover_image", "quantity", "status",
}

func (e *CSVExporter) Export(w io.Writer, books []entities.Book) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, book := range books {
		year := ""
		if book.PublicationYear != 0 {
			year = strconv.Itoa(book.PublicationYear)
		}
		row := []string{
			book.Title,
			book.Author,
			book.ISBN,
			book.Genre,
			year,
			book.Description,
			book.CoverImage,
			strconv.Itoa(book.Quantity),
			string(book.Status),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write book %d: %w", book.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// JSONExporter writes {"books": [...]}, the same envelope the importer
// understands.
type JSONExporter struct{}

func (e *JSONExporter) ContentType() string   { return "application/json" }
func (e *JSONExporter) FileExtension() string { return "json" }

func (e *JSONExporter) Export(w io.Writer, books []entities.Book) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string][]entities.Book{"books": books})
}
