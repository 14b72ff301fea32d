package models

import (
	"math"
	"time"
)

// BorrowStatus represents the loan lifecycle.
type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "borrowed"
	BorrowStatusReturned BorrowStatus = "returned"
	BorrowStatusOverdue  BorrowStatus = "overdue"
	BorrowStatusLost     BorrowStatus = "lost"
)

// ActiveBorrowStatuses hold a physical copy away from the shelf.
var ActiveBorrowStatuses = []BorrowStatus{BorrowStatusBorrowed, BorrowStatusOverdue}

// IsActive reports whether the status still holds a copy.
func (s BorrowStatus) IsActive() bool {
	return s == BorrowStatusBorrowed || s == BorrowStatusOverdue
}

// IsClosed reports whether the record may be deleted.
func (s BorrowStatus) IsClosed() bool {
	return s == BorrowStatusReturned || s == BorrowStatusLost
}

// BorrowRecord is one loan of a book to a student.
type BorrowRecord struct {
	ID          string       `db:"id" json:"id"`
	StudentID   string       `db:"student_id" json:"student_id"`
	BookID      string       `db:"book_id" json:"book_id"`
	BorrowDate  time.Time    `db:"borrow_date" json:"borrow_date"`
	DueDate     time.Time    `db:"due_date" json:"due_date"`
	ReturnDate  *time.Time   `db:"return_date" json:"return_date"`
	Status      BorrowStatus `db:"status" json:"status"`
	FineAmount  float64      `db:"fine_amount" json:"fine_amount"`
	FinePaid    bool         `db:"fine_paid" json:"fine_paid"`
	Notes       string       `db:"notes" json:"notes"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
	IsOverdue   bool         `db:"-" json:"is_overdue"`
	DaysOverdue int          `db:"-" json:"days_overdue"`
}

// OverdueAt reports whether the loan is past due at now.
func (r BorrowRecord) OverdueAt(now time.Time) bool {
	return r.Status != BorrowStatusReturned && now.After(r.DueDate)
}

// DaysOverdueAt returns whole days past the due date, zero when not overdue.
func (r BorrowRecord) DaysOverdueAt(now time.Time) int {
	if !r.OverdueAt(now) {
		return 0
	}
	return int(math.Floor(now.Sub(r.DueDate).Hours() / 24))
}

// Annotate fills the derived overdue fields for presentation.
func (r *BorrowRecord) Annotate(now time.Time) {
	r.IsOverdue = r.OverdueAt(now)
	r.DaysOverdue = r.DaysOverdueAt(now)
}

// BorrowRecordDetail enriches a record with student and book labels.
type BorrowRecordDetail struct {
	BorrowRecord
	StudentName      string `db:"student_name" json:"student_name"`
	StudentStudentID string `db:"student_student_id" json:"student_student_id"`
	BookTitle        string `db:"book_title" json:"book_title"`
	BookISBN         string `db:"book_isbn" json:"book_isbn"`
}

// BorrowFilter narrows loan listings.
type BorrowFilter struct {
	StudentID   string
	BookID      string
	Status      BorrowStatus
	OverdueOnly bool
	// OrderByDue lists the most overdue loans first instead of the newest loans.
	OrderByDue bool
	PageRequest
}
