package models

import "time"

// CourseStatus tracks whether a course accepts enrollments.
type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "active"
	CourseStatusClosed   CourseStatus = "closed"
	CourseStatusFinished CourseStatus = "finished"
)

// DefaultMaxStudents is the seat count used when none is supplied.
const DefaultMaxStudents = 50

// Course is a teachable unit students enroll into.
type Course struct {
	ID              string       `db:"id" json:"id"`
	Code            string       `db:"code" json:"code"`
	Name            string       `db:"name" json:"name"`
	Credits         float64      `db:"credits" json:"credits"`
	Hours           int          `db:"hours" json:"hours"`
	Teacher         string       `db:"teacher" json:"teacher"`
	Semester        string       `db:"semester" json:"semester"`
	Classroom       string       `db:"classroom" json:"classroom"`
	Schedule        string       `db:"schedule" json:"schedule"`
	Description     string       `db:"description" json:"description"`
	Prerequisites   string       `db:"prerequisites" json:"prerequisites"`
	MaxStudents     int          `db:"max_students" json:"max_students"`
	CurrentStudents int          `db:"current_students" json:"current_students"`
	Status          CourseStatus `db:"status" json:"status"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// CanEnroll reports whether another student fits into the course.
func (c Course) CanEnroll() bool {
	return c.Status == CourseStatusActive && c.CurrentStudents < c.MaxStudents
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	Search   string
	Semester string
	Status   CourseStatus
	PageRequest
}
