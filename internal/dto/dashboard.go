package dto

import "time"

// DashboardResponse is the aggregated registrar dashboard payload.
type DashboardResponse struct {
	Overview         DashboardOverview `json:"overview"`
	ThisWeek         DashboardThisWeek `json:"this_week"`
	Distributions    Distributions     `json:"distributions"`
	Popular          PopularSection    `json:"popular"`
	RecentActivities RecentActivities  `json:"recent_activities"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// DashboardOverview holds the headline counters.
type DashboardOverview struct {
	TotalStudents    int `db:"total_students" json:"total_students"`
	ActiveStudents   int `db:"active_students" json:"active_students"`
	TotalCourses     int `db:"total_courses" json:"total_courses"`
	ActiveCourses    int `db:"active_courses" json:"active_courses"`
	TotalBooks       int `db:"total_books" json:"total_books"`
	AvailableBooks   int `db:"available_books" json:"available_books"`
	TotalBookCopies  int `db:"total_book_copies" json:"total_book_copies"`
	AvailableCopies  int `db:"available_copies" json:"available_copies"`
	BorrowedBooks    int `db:"borrowed_books" json:"borrowed_books"`
	OverdueBooks     int `db:"overdue_books" json:"overdue_books"`
	TotalEnrollments int `db:"total_enrollments" json:"total_enrollments"`
}

// DashboardThisWeek counts rows created in the trailing seven days.
type DashboardThisWeek struct {
	NewStudents    int `db:"new_students" json:"new_students"`
	NewEnrollments int `db:"new_enrollments" json:"new_enrollments"`
	NewBorrows     int `db:"new_borrows" json:"new_borrows"`
}

// Distributions groups students by major and by grade.
type Distributions struct {
	Majors []MajorCount `json:"majors"`
	Grades []GradeCount `json:"grades"`
}

// MajorCount is one major bucket.
type MajorCount struct {
	Major string `db:"major" json:"major"`
	Count int    `db:"count" json:"count"`
}

// GradeCount is one grade bucket.
type GradeCount struct {
	Grade string `db:"grade" json:"grade"`
	Count int    `db:"count" json:"count"`
}

// PopularSection lists the top courses and books.
type PopularSection struct {
	Courses []PopularCourse `json:"courses"`
	Books   []PopularBook   `json:"books"`
}

// PopularCourse ranks courses by enrolled students.
type PopularCourse struct {
	ID              string `db:"id" json:"id"`
	Name            string `db:"name" json:"name"`
	Code            string `db:"code" json:"code"`
	EnrollmentCount int    `db:"enrollment_count" json:"enrollment_count"`
}

// PopularBook ranks books by all-time loans.
type PopularBook struct {
	ID          string `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Author      string `db:"author" json:"author"`
	BorrowCount int    `db:"borrow_count" json:"borrow_count"`
}

// RecentActivities lists the newest enrollments and loans.
type RecentActivities struct {
	Enrollments []RecentEnrollment `json:"enrollments"`
	Borrows     []RecentBorrow     `json:"borrows"`
}

// RecentEnrollment is a dashboard activity row.
type RecentEnrollment struct {
	StudentName string    `db:"student_name" json:"student_name"`
	CourseName  string    `db:"course_name" json:"course_name"`
	Date        time.Time `db:"date" json:"date"`
}

// RecentBorrow is a dashboard activity row.
type RecentBorrow struct {
	StudentName string    `db:"student_name" json:"student_name"`
	BookTitle   string    `db:"book_title" json:"book_title"`
	Date        time.Time `db:"date" json:"date"`
}
