package models

import "time"

// BookStatus marks whether a title is on loan service.
type BookStatus string

const (
	BookStatusAvailable   BookStatus = "available"
	BookStatusUnavailable BookStatus = "unavailable"
)

// Book is a catalogue title with a fixed number of physical copies.
type Book struct {
	ID              string     `db:"id" json:"id"`
	ISBN            string     `db:"isbn" json:"isbn"`
	Title           string     `db:"title" json:"title"`
	Author          string     `db:"author" json:"author"`
	Publisher       string     `db:"publisher" json:"publisher"`
	PublishDate     *time.Time `db:"publish_date" json:"publish_date"`
	Category        string     `db:"category" json:"category"`
	Tags            string     `db:"tags" json:"tags"`
	TotalCopies     int        `db:"total_copies" json:"total_copies"`
	BorrowedCopies  int        `db:"borrowed_copies" json:"borrowed_copies"`
	AvailableCopies int        `db:"available_copies" json:"available_copies"`
	Location        string     `db:"location" json:"location"`
	Description     string     `db:"description" json:"description"`
	Pages           int        `db:"pages" json:"pages"`
	Language        string     `db:"language" json:"language"`
	Status          BookStatus `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// DefaultBookLanguage is stored when no language is supplied.
const DefaultBookLanguage = "中文"

// CanBorrow reports whether a copy can be lent right now.
func (b Book) CanBorrow() bool {
	return b.Status == BookStatusAvailable && b.AvailableCopies > 0
}

// BookFilter narrows catalogue listings.
type BookFilter struct {
	Search        string
	Category      string
	Status        BookStatus
	AvailableOnly bool
	PageRequest
}
