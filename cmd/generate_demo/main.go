// Command generate_demo creates demo databases with sample data from
// public domain books.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/activities"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/borrowings"
	"github.com/openshelf/openshelf/internal/database/settings"
	submissionrepo "github.com/openshelf/openshelf/internal/database/submissions"
	"github.com/openshelf/openshelf/internal/database/users"
	"github.com/openshelf/openshelf/internal/entities"
)

const (
	defaultDemoDatabasePath            = "./demo/demo.db"
	defaultDemoSubmissionsDatabasePath = "./demo/demo-submissions.db"

	demoPassword = "demo1234"
)

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo library database file")
	submissionsPath := flag.String("submissions-db", defaultDemoSubmissionsDatabasePath, "path to the demo submissions database file")
	flag.Parse()

	log.Printf("Generating demo databases at %s and %s...", *dbPath, *submissionsPath)

	for _, path := range []string{*dbPath, *submissionsPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Fatalf("Failed to remove existing demo database: %v", err)
		}
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create library database: %v", err)
	}
	defer db.Close()

	submissionsDB, err := database.NewSubmissionsDatabase(*submissionsPath)
	if err != nil {
		log.Fatalf("Failed to create submissions database: %v", err)
	}
	defer submissionsDB.Close()

	booksRepo := books.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)
	borrowingsRepo := borrowings.NewRepository(db.DB)
	settingsRepo := settings.NewRepository(db.DB)
	activitiesRepo := activities.NewRepository(db.DB)
	submissionsRepo := submissionrepo.NewRepository(submissionsDB.DB)

	seededUsers := seedUsers(usersRepo)
	seededBooks := seedBooks(booksRepo)
	seedBorrowing(booksRepo, borrowingsRepo, seededUsers, seededBooks)
	seedSettings(settingsRepo)
	seedActivities(activitiesRepo, seededUsers)
	seedSubmissions(submissionsRepo)

	log.Println("Demo databases generated successfully!")
	log.Printf("Log in as admin@demo.openshelf.org or reader@demo.openshelf.org with password %q", demoPassword)
}

func seedUsers(repo *users.Repository) []entities.User {
	hash, err := auth.HashPassword(demoPassword, bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	demoUsers := []entities.User{
		{
			Name:             "Demo Admin",
			Email:            "admin@demo.openshelf.org",
			PasswordHash:     hash,
			Role:             entities.UserRoleAdmin,
			Status:           entities.UserStatusActive,
			VerificationCode: "ADM-DEMO-0001",
		},
		{
			Name:             "Demo Reader",
			Email:            "reader@demo.openshelf.org",
			PasswordHash:     hash,
			Role:             entities.UserRoleUser,
			Status:           entities.UserStatusActive,
			VerificationCode: "LIB-DEMO-0002",
		},
	}

	for i := range demoUsers {
		if err := repo.Create(&demoUsers[i]); err != nil {
			log.Fatalf("Failed to create user %s: %v", demoUsers[i].Email, err)
		}
		log.Printf("Created user: %s (%s)", demoUsers[i].Email, demoUsers[i].Role)
	}
	return demoUsers
}

func seedBooks(repo *books.Repository) []entities.Book {
	demoBooks := []entities.Book{
		{
			Title:           "Meditations",
			Author:          "Marcus Aurelius",
			ISBN:            "9780140449334",
			Genre:           "Philosophy",
			PublicationYear: 1862,
			Description:     "Personal writings of the Roman emperor on Stoic philosophy.",
			Status:          entities.BookStatusAvailable,
			Quantity:        3,
		},
		{
			Title:           "Pride and Prejudice",
			Author:          "Jane Austen",
			ISBN:            "9780141439518",
			Genre:           "Fiction",
			PublicationYear: 1813,
			Description:     "A comedy of manners set in Regency era England.",
			Status:          entities.BookStatusAvailable,
			Quantity:        2,
		},
		{
			Title:           "Frankenstein",
			Author:          "Mary Shelley",
			ISBN:            "9780141439471",
			Genre:           "Gothic Fiction",
			PublicationYear: 1818,
			Description:     "A scientist creates a sapient creature in an unorthodox experiment.",
			Status:          entities.BookStatusAvailable,
			Quantity:        1,
		},
		{
			Title:           "The Origin of Species",
			Author:          "Charles Darwin",
			ISBN:            "9780451529060",
			Genre:           "Science",
			PublicationYear: 1859,
			Description:     "The foundation of evolutionary biology.",
			Status:          entities.BookStatusAvailable,
			Quantity:        1,
		},
		{
			Title:           "Moby-Dick",
			Author:          "Herman Melville",
			ISBN:            "9780142437247",
			Genre:           "Fiction",
			PublicationYear: 1851,
			Description:     "Captain Ahab's obsessive quest for the white whale.",
			Status:          entities.BookStatusUnavailable,
			Quantity:        1,
		},
		{
			// Left sparse so demo visitors can try the enrichment endpoint
			Title:    "The Time Machine",
			Author:   "H. G. Wells",
			ISBN:     "9780141439976",
			Status:   entities.BookStatusAvailable,
			Quantity: 1,
		},
	}

	for i := range demoBooks {
		if err := repo.Create(&demoBooks[i]); err != nil {
			log.Fatalf("Failed to create book %s: %v", demoBooks[i].Title, err)
		}
		log.Printf("Created book: %s by %s", demoBooks[i].Title, demoBooks[i].Author)
	}
	return demoBooks
}

func seedBorrowing(booksRepo *books.Repository, repo *borrowings.Repository, demoUsers []entities.User, demoBooks []entities.Book) {
	reader := demoUsers[1]
	book := demoBooks[1] // Pride and Prejudice

	flipped, err := booksRepo.MarkBorrowed(book.ID)
	if err != nil || !flipped {
		log.Fatalf("Failed to mark book %d borrowed: %v", book.ID, err)
	}

	now := time.Now()
	borrowing := entities.Borrowing{
		UserID:     reader.ID,
		BookID:     book.ID,
		BorrowDate: now.AddDate(0, 0, -3),
		DueDate:    now.AddDate(0, 0, 11),
		Status:     entities.BorrowingStatusActive,
	}
	if err := repo.Create(&borrowing); err != nil {
		log.Fatalf("Failed to create borrowing: %v", err)
	}
	log.Printf("Created active borrowing: %s -> %s", reader.Email, book.Title)
}

func seedSettings(repo *settings.Repository) {
	demoSettings := map[string]string{
		"library_name":  "OpenShelf Demo Library",
		"contact_email": "hello@demo.openshelf.org",
		"max_loans":     "5",
	}

	for key, value := range demoSettings {
		if err := repo.SetSetting(key, value); err != nil {
			log.Fatalf("Failed to set setting %s: %v", key, err)
		}
	}
	log.Printf("Created %d settings", len(demoSettings))
}

func seedActivities(repo *activities.Repository, demoUsers []entities.User) {
	adminID := demoUsers[0].ID
	descriptions := []string{
		"Demo library initialised",
		"Book \"Meditations\" added",
		"Book \"Pride and Prejudice\" borrowed",
	}

	for _, description := range descriptions {
		if err := repo.Log(&entities.Activity{Description: description, UserID: &adminID}); err != nil {
			log.Fatalf("Failed to log activity: %v", err)
		}
	}
	log.Printf("Created %d activities", len(descriptions))
}

func seedSubmissions(repo *submissionrepo.Repository) {
	rating := entities.Rating{
		Stars:   5,
		Message: "Lovely little library!",
		User:    "A happy visitor",
	}
	if err := repo.CreateRating(&rating); err != nil {
		log.Fatalf("Failed to create rating: %v", err)
	}

	contact := entities.ContactSubmission{
		Name:    "Curious Visitor",
		Email:   "visitor@example.com",
		Message: "Do you have any books on astronomy?",
	}
	if err := repo.CreateContact(&contact); err != nil {
		log.Fatalf("Failed to create contact submission: %v", err)
	}

	notification := entities.Notification{
		Type:      entities.NotificationNewRating,
		Message:   "5 star rating",
		RelatedID: &rating.ID,
	}
	if err := repo.CreateNotification(&notification); err != nil {
		log.Fatalf("Failed to create notification: %v", err)
	}
	log.Println("Created demo submissions")
}
