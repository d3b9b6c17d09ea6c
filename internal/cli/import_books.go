package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openshelf/openshelf/internal/activity"
	"github.com/openshelf/openshelf/internal/books"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/activities"
	bookrepo "github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/importers"
)

// ImportBooksCommand loads a catalogue file into the library database.
type ImportBooksCommand struct {
	FilePath     string
	DatabasePath string
	Verbose      bool
	DryRun       bool
}

// NewImportBooksCommand creates a new ImportBooksCommand
func NewImportBooksCommand() *ImportBooksCommand {
	return &ImportBooksCommand{}
}

// ParseFlags parses command line flags
func (cmd *ImportBooksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-books", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the catalogue file (JSON, CSV or pipe-delimited)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the library database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse the file and report what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-books -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books from a catalogue file into the library database.\n\n")
		fmt.Fprintf(os.Stderr, "The format is detected from the file contents:\n")
		fmt.Fprintf(os.Stderr, "  - JSON array of books, or an object with a \"books\" array\n")
		fmt.Fprintf(os.Stderr, "  - CSV with a header row (title, author, isbn, ...)\n")
		fmt.Fprintf(os.Stderr, "  - pipe-delimited lines: title|author|isbn|genre|year|description\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-books -file catalogue.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import-books -file catalogue.json -db ./library.db -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		fs.Usage()
		return fmt.Errorf("the -file flag is required")
	}

	return nil
}

// Run executes the import command
func (cmd *ImportBooksCommand) Run() error {
	fmt.Println("📚 Book Catalogue Import")
	fmt.Println("========================")

	if cmd.DryRun {
		fmt.Println("🔍 DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	payload, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.FilePath, err)
	}

	parser := importers.NewMultiFormat()

	if cmd.DryRun {
		records, err := parser.Parse(payload)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", cmd.FilePath, err)
		}

		fmt.Printf("📖 Parsed %d records from %s\n", len(records), cmd.FilePath)
		if cmd.Verbose {
			for i, rec := range records {
				fmt.Printf("  %d. %q by %s\n", i+1, rec.Title, rec.Author)
			}
		}
		fmt.Println("\n✅ Dry run complete. Use without -dry-run to import.")
		return nil
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("💾 Importing into database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// No notification store in CLI mode; activities still land in the
	// main database.
	recorder := activity.NewRecorder(activities.NewRepository(db.DB), nil)
	service := books.NewService(bookrepo.NewRepository(db.DB), parser, recorder)

	result, err := service.Import(payload, nil)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("📚 Books added: %d\n", result.AddedCount)

	if len(result.Errors) > 0 {
		fmt.Printf("\n⚠️  %d records were skipped:\n", len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Printf("  ❌ %s\n", msg)
		}
	}

	fmt.Println("\n✅ Import complete!")
	return nil
}
