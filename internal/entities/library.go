package entities

import "time"

type BookStatus string

const (
	BookStatusAvailable   BookStatus = "available"
	BookStatusBorrowed    BookStatus = "borrowed"
	BookStatusUnavailable BookStatus = "unavailable"
	BookStatusRemoved     BookStatus = "removed"
)

// ValidBookStatus reports whether s is one of the closed book status values.
func ValidBookStatus(s BookStatus) bool {
	switch s {
	case BookStatusAvailable, BookStatusBorrowed, BookStatusUnavailable, BookStatusRemoved:
		return true
	}
	return false
}

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

type BorrowingStatus string

const (
	BorrowingStatusActive   BorrowingStatus = "active"
	BorrowingStatusReturned BorrowingStatus = "returned"
)

// Book is a catalog entry. Soft deletion is an explicit flag rather than
// gorm.DeletedAt: trashed books stay queryable for the admin trash view and
// are restorable, and Status is orthogonal to deletion.
type Book struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"index;size:512" json:"title"`
	Author          string     `gorm:"index;size:256" json:"author"`
	ISBN            string     `gorm:"index;size:20" json:"isbn"`
	Genre           string     `gorm:"size:100" json:"genre,omitempty"`
	PublicationYear int        `json:"publication_year,omitempty"`
	Description     string     `gorm:"type:text" json:"description,omitempty"`
	Status          BookStatus `gorm:"size:20;default:'available'" json:"status"`
	CoverImage      string     `gorm:"size:2048" json:"cover_image,omitempty"`
	Quantity        int        `gorm:"default:1" json:"quantity"`
	IsDeleted       bool       `gorm:"index;default:false" json:"is_deleted"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:256" json:"name"`
	Email            string     `gorm:"index;size:255" json:"email"`
	PasswordHash     string     `gorm:"size:128" json:"-"`
	Role             UserRole   `gorm:"size:20;default:'user'" json:"role"`
	Status           UserStatus `gorm:"size:20;default:'active'" json:"status"`
	VerificationCode string     `gorm:"size:64" json:"-"`
	IsDeleted        bool       `gorm:"index;default:false" json:"is_deleted"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Borrowing is one row in the lending ledger. Rows are closed on return,
// never deleted.
type Borrowing struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"index" json:"user_id"`
	BookID     uint            `gorm:"index" json:"book_id"`
	BorrowDate time.Time       `json:"borrow_date"`
	DueDate    time.Time       `json:"due_date"`
	ReturnDate *time.Time      `json:"return_date,omitempty"`
	Status     BorrowingStatus `gorm:"index;size:20;default:'active'" json:"status"`
}

func (Borrowing) TableName() string {
	return "borrowings"
}

// BorrowedBook is a Borrowing joined to its book row, as served to the user
// dashboard.
type BorrowedBook struct {
	BorrowingID uint       `json:"borrowing_id"`
	BookID      uint       `json:"book_id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	ISBN        string     `json:"isbn"`
	CoverImage  string     `json:"cover_image,omitempty"`
	BorrowDate  time.Time  `json:"borrow_date"`
	DueDate     time.Time  `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
}

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Activity is one append-only audit trail entry.
type Activity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"size:500" json:"description"`
	UserID      *uint     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Activity) TableName() string {
	return "activities"
}
