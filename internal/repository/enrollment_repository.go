package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-registrar-api/internal/models"
)

const enrollmentDetailColumns = `e.id, e.student_id, e.course_id, e.enrollment_date, e.status, e.grade, e.grade_letter, e.gpa_points,
        e.notes, e.created_at, e.updated_at, s.name AS student_name, s.student_id AS student_student_id,
        c.name AS course_name, c.code AS course_code`

const enrollmentFrom = `enrollments e JOIN students s ON s.id = e.student_id JOIN courses c ON c.id = e.course_id`

// EnrollmentRepository handles persistence for student enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments with student and course labels.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	where := squirrel.And{}
	if filter.StudentID != "" {
		where = append(where, squirrel.Eq{"e.student_id": filter.StudentID})
	}
	if filter.CourseID != "" {
		where = append(where, squirrel.Eq{"e.course_id": filter.CourseID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"e.status": filter.Status})
	}

	rows := psql.Select(enrollmentDetailColumns).From(enrollmentFrom).Where(where).OrderBy("e.created_at ASC", "e.id ASC")
	count := psql.Select("COUNT(*)").From("enrollments e").Where(where)

	enrollments := []models.EnrollmentDetail{}
	total, err := selectPage(ctx, r.db, &enrollments, rows, count, filter.PageRequest, "enrollments")
	if err != nil {
		return nil, 0, err
	}
	return enrollments, total, nil
}

// FindByID fetches one enrollment with its labels.
func (r *EnrollmentRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.EnrollmentDetail, error) {
	query := `SELECT ` + enrollmentDetailColumns + ` FROM ` + enrollmentFrom + ` WHERE e.id = $1`
	var enrollment models.EnrollmentDetail
	if err := sqlx.GetContext(ctx, target(r.db, exec), &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByPair returns the enrollment row for a student/course pair, whatever its status.
func (r *EnrollmentRepository) FindByPair(ctx context.Context, exec sqlx.ExtContext, studentID, courseID string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, enrollment_date, status, grade, grade_letter, gpa_points, notes, created_at, updated_at
        FROM enrollments WHERE student_id = $1 AND course_id = $2`
	var enrollment models.Enrollment
	if err := sqlx.GetContext(ctx, target(r.db, exec), &enrollment, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create inserts a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = now
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusEnrolled
	}
	const query = `INSERT INTO enrollments (id, student_id, course_id, enrollment_date, status, grade, grade_letter, gpa_points, notes, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :enrollment_date, :status, :grade, :grade_letter, :gpa_points, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update persists lifecycle and grade changes.
func (r *EnrollmentRepository) Update(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	enrollment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE enrollments SET enrollment_date = :enrollment_date, status = :status, grade = :grade, grade_letter = :grade_letter,
        gpa_points = :gpa_points, notes = :notes, updated_at = :updated_at WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, enrollment)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return expectAffected(result, "enrollment")
}

// Delete hard-deletes an enrollment row.
func (r *EnrollmentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := target(r.db, exec).ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return expectAffected(result, "enrollment")
}
