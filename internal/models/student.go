package models

import "time"

// StudentStatus is the enrolment standing of a student.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusGraduated StudentStatus = "graduated"
	StudentStatusSuspended StudentStatus = "suspended"
)

// Student represents a learner registered in the institution.
type Student struct {
	ID             string        `db:"id" json:"id"`
	StudentID      string        `db:"student_id" json:"student_id"`
	Name           string        `db:"name" json:"name"`
	IDCard         string        `db:"id_card" json:"id_card"`
	Gender         string        `db:"gender" json:"gender"`
	Age            int           `db:"age" json:"age"`
	Major          string        `db:"major" json:"major"`
	Grade          string        `db:"grade" json:"grade"`
	ClassName      string        `db:"class_name" json:"class_name"`
	Email          *string       `db:"email" json:"email"`
	Phone          string        `db:"phone" json:"phone"`
	Address        string        `db:"address" json:"address"`
	Status         StudentStatus `db:"status" json:"status"`
	EnrollmentDate time.Time     `db:"enrollment_date" json:"enrollment_date"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search string
	Status StudentStatus
	Major  string
	Grade  string
	PageRequest
}

// StudentDetail adds the courses a student currently takes and the books they hold.
type StudentDetail struct {
	Student
	EnrolledCourses []Course `json:"enrolled_courses"`
	BorrowedBooks   []Book   `json:"borrowed_books"`
}
