package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-registrar-api/internal/dto"
)

// DashboardRepository runs the read-only aggregate queries behind the dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository instantiates the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Overview counts entities as of now. available_copies is left for the caller to derive.
func (r *DashboardRepository) Overview(ctx context.Context, now time.Time) (dto.DashboardOverview, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM students) AS total_students,
        (SELECT COUNT(*) FROM students WHERE status = 'active') AS active_students,
        (SELECT COUNT(*) FROM courses) AS total_courses,
        (SELECT COUNT(*) FROM courses WHERE status = 'active') AS active_courses,
        (SELECT COUNT(*) FROM books) AS total_books,
        (SELECT COUNT(*) FROM books WHERE status = 'available') AS available_books,
        (SELECT COALESCE(SUM(total_copies), 0) FROM books) AS total_book_copies,
        (SELECT COUNT(*) FROM borrow_records WHERE status IN ('borrowed', 'overdue')) AS borrowed_books,
        (SELECT COUNT(*) FROM borrow_records WHERE status IN ('borrowed', 'overdue') AND due_date < $1) AS overdue_books,
        (SELECT COUNT(*) FROM enrollments WHERE status = 'enrolled') AS total_enrollments`
	var overview dto.DashboardOverview
	if err := r.db.GetContext(ctx, &overview, query, now.UTC()); err != nil {
		return dto.DashboardOverview{}, fmt.Errorf("query dashboard overview: %w", err)
	}
	return overview, nil
}

// ThisWeek counts rows created since the given instant.
func (r *DashboardRepository) ThisWeek(ctx context.Context, since time.Time) (dto.DashboardThisWeek, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM students WHERE created_at >= $1) AS new_students,
        (SELECT COUNT(*) FROM enrollments WHERE created_at >= $1) AS new_enrollments,
        (SELECT COUNT(*) FROM borrow_records WHERE borrow_date >= $1) AS new_borrows`
	var week dto.DashboardThisWeek
	if err := r.db.GetContext(ctx, &week, query, since.UTC()); err != nil {
		return dto.DashboardThisWeek{}, fmt.Errorf("query dashboard weekly counts: %w", err)
	}
	return week, nil
}

// StudentsByMajor groups students by major.
func (r *DashboardRepository) StudentsByMajor(ctx context.Context) ([]dto.MajorCount, error) {
	const query = `SELECT major, COUNT(*) AS count FROM students GROUP BY major ORDER BY count DESC, major ASC`
	rows := []dto.MajorCount{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query students by major: %w", err)
	}
	return rows, nil
}

// StudentsByGrade groups students by grade.
func (r *DashboardRepository) StudentsByGrade(ctx context.Context) ([]dto.GradeCount, error) {
	const query = `SELECT grade, COUNT(*) AS count FROM students GROUP BY grade ORDER BY grade ASC`
	rows := []dto.GradeCount{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query students by grade: %w", err)
	}
	return rows, nil
}

// PopularCourses ranks courses by currently enrolled students, ties broken by id.
func (r *DashboardRepository) PopularCourses(ctx context.Context, limit int) ([]dto.PopularCourse, error) {
	const query = `SELECT c.id, c.name, c.code, COUNT(e.id) AS enrollment_count
        FROM courses c JOIN enrollments e ON e.course_id = c.id
        WHERE e.status = 'enrolled'
        GROUP BY c.id, c.name, c.code
        ORDER BY enrollment_count DESC, c.id ASC
        LIMIT $1`
	rows := []dto.PopularCourse{}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("query popular courses: %w", err)
	}
	return rows, nil
}

// PopularBooks ranks books by all-time loans, ties broken by id.
func (r *DashboardRepository) PopularBooks(ctx context.Context, limit int) ([]dto.PopularBook, error) {
	const query = `SELECT b.id, b.title, b.author, COUNT(br.id) AS borrow_count
        FROM books b JOIN borrow_records br ON br.book_id = b.id
        GROUP BY b.id, b.title, b.author
        ORDER BY borrow_count DESC, b.id ASC
        LIMIT $1`
	rows := []dto.PopularBook{}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("query popular books: %w", err)
	}
	return rows, nil
}

// RecentEnrollments lists the newest active enrollments.
func (r *DashboardRepository) RecentEnrollments(ctx context.Context, limit int) ([]dto.RecentEnrollment, error) {
	const query = `SELECT s.name AS student_name, c.name AS course_name, e.created_at AS date
        FROM enrollments e JOIN students s ON s.id = e.student_id JOIN courses c ON c.id = e.course_id
        WHERE e.status = 'enrolled'
        ORDER BY e.created_at DESC, e.id ASC
        LIMIT $1`
	rows := []dto.RecentEnrollment{}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("query recent enrollments: %w", err)
	}
	return rows, nil
}

// RecentBorrows lists the newest active loans.
func (r *DashboardRepository) RecentBorrows(ctx context.Context, limit int) ([]dto.RecentBorrow, error) {
	const query = `SELECT s.name AS student_name, b.title AS book_title, br.borrow_date AS date
        FROM borrow_records br JOIN students s ON s.id = br.student_id JOIN books b ON b.id = br.book_id
        WHERE br.status IN ('borrowed', 'overdue')
        ORDER BY br.borrow_date DESC, br.id ASC
        LIMIT $1`
	rows := []dto.RecentBorrow{}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("query recent borrows: %w", err)
	}
	return rows, nil
}
