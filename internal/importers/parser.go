package importers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record represents a single book from any import source. This is the
// common format all parsers convert to; validation beyond structural shape
// happens downstream.
type Record struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Genre           string `json:"genre"`
	PublicationYear int    `json:"publication_year"`
	Description     string `json:"description"`
	CoverImage      string `json:"cover_image"`
	Quantity        int    `json:"quantity"`
}

// Parser transforms raw upload bytes into records. Each supported format
// implements this interface.
type Parser interface {
	Parse(data []byte) ([]Record, error)
}

// MultiFormat sniffs the payload and delegates to the matching parser:
// '[' or '{' means JSON, a '|' in the first line means pipe-delimited,
// anything else is treated as CSV.
type MultiFormat struct{}

func NewMultiFormat() *MultiFormat {
	return &MultiFormat{}
}

func (m *MultiFormat) Parse(data []byte) ([]Record, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty import payload")
	}

	switch trimmed[0] {
	case '[', '{':
		return parseJSON(trimmed)
	}

	firstLine := trimmed
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine = trimmed[:idx]
	}
	if strings.Contains(firstLine, "|") {
		return parsePipe(trimmed)
	}
	return parseCSV(trimmed)
}

func parseJSON(payload string) ([]Record, error) {
	if payload[0] == '[' {
		var records []Record
		if err := json.Unmarshal([]byte(payload), &records); err != nil {
			return nil, fmt.Errorf("failed to parse JSON array: %w", err)
		}
		return records, nil
	}

	var wrapper struct {
		Books []Record `json:"books"`
	}
	if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse JSON object: %w", err)
	}
	if wrapper.Books == nil {
		return nil, fmt.Errorf("JSON object has no \"books\" array")
	}
	return wrapper.Books, nil
}

// csvColumns maps header names to Record fields. Headers are matched
// case-insensitively with spaces treated as underscores.
var csvColumns = map[string]func(*Record, string){
	"title":            func(r *Record, v string) { r.Title = v },
	"author":           func(r *Record, v string) { r.Author = v },
	"isbn":             func(r *Record, v string) { r.ISBN = v },
	"genre":            func(r *Record, v string) { r.Genre = v },
	"publication_year": func(r *Record, v string) { r.PublicationYear = atoiOrZero(v) },
	"year":             func(r *Record, v string) { r.PublicationYear = atoiOrZero(v) },
	"description":      func(r *Record, v string) { r.Description = v },
	"cover_image":      func(r *Record, v string) { r.CoverImage = v },
	"quantity":         func(r *Record, v string) { r.Quantity = atoiOrZero(v) },
}

func parseCSV(payload string) ([]Record, error) {
	reader := csv.NewReader(strings.NewReader(payload))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV needs a header row and at least one data row")
	}

	setters := make([]func(*Record, string), len(rows[0]))
	for i, header := range rows[0] {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(header)), " ", "_")
		setters[i] = csvColumns[key]
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var record Record
		for i, value := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](&record, strings.TrimSpace(value))
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// parsePipe reads "title|author|isbn|genre|year|description" lines, one
// book per line. Trailing fields may be omitted.
func parsePipe(payload string) ([]Record, error) {
	var records []Record
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		record := Record{}
		for i, value := range fields {
			value = strings.TrimSpace(value)
			switch i {
			case 0:
				record.Title = value
			case 1:
				record.Author = value
			case 2:
				record.ISBN = value
			case 3:
				record.Genre = value
			case 4:
				record.PublicationYear = atoiOrZero(value)
			case 5:
				record.Description = value
			}
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no pipe-delimited rows found")
	}
	return records, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
