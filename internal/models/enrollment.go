package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// Enrollment links a student to a course.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	CourseID       string           `db:"course_id" json:"course_id"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	Grade          *float64         `db:"grade" json:"grade"`
	GradeLetter    *string          `db:"grade_letter" json:"grade_letter"`
	GPAPoints      *float64         `db:"gpa_points" json:"gpa_points"`
	Notes          string           `db:"notes" json:"notes"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentName      string `db:"student_name" json:"student_name"`
	StudentStudentID string `db:"student_student_id" json:"student_student_id"`
	CourseName       string `db:"course_name" json:"course_name"`
	CourseCode       string `db:"course_code" json:"course_code"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	Status    EnrollmentStatus
	PageRequest
}

// gradeBands are inclusive lower bounds, highest first.
var gradeBands = []struct {
	min    float64
	letter string
	points float64
}{
	{90, "A", 4.0},
	{80, "B", 3.0},
	{70, "C", 2.0},
	{60, "D", 1.0},
}

// GradeFor maps a 0-100 score onto its letter and GPA points.
func GradeFor(score float64) (string, float64) {
	for _, band := range gradeBands {
		if score >= band.min {
			return band.letter, band.points
		}
	}
	return "F", 0.0
}

// ApplyGrade completes the enrollment with a final score.
func (e *Enrollment) ApplyGrade(score float64) {
	letter, points := GradeFor(score)
	e.Status = EnrollmentStatusCompleted
	e.Grade = &score
	e.GradeLetter = &letter
	e.GPAPoints = &points
}
