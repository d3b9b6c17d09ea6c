package entities

import "time"

// Notification types produced as side effects of mutations.
const (
	NotificationBookAdded      = "book_added"
	NotificationBooksImported  = "books_imported"
	NotificationUserRegistered = "user_registered"
	NotificationNewRating      = "new_rating"
)

// Rating is visitor star feedback, optionally answered by an admin via Reply.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Stars     int       `json:"stars"`
	Message   string    `gorm:"type:text" json:"message,omitempty"`
	User      string    `gorm:"size:256" json:"user,omitempty"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	Reply     string    `gorm:"type:text" json:"reply,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

type ContactSubmission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:256" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	Message   string    `gorm:"type:text" json:"message"`
	Reply     string    `gorm:"type:text" json:"reply,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (ContactSubmission) TableName() string {
	return "contact_submissions"
}

// Notification is append-only apart from the read flag.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"index;size:50" json:"type"`
	Message   string    `gorm:"size:500" json:"message"`
	RelatedID *uint     `json:"related_id,omitempty"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
