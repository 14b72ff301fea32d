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

const studentColumns = `s.id, s.student_id, s.name, s.id_card, s.gender, s.age, s.major, s.grade, s.class_name,
        s.email, s.phone, s.address, s.status, s.enrollment_date, s.created_at, s.updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters in insertion order.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		where = append(where, containsAny(filter.Search, "s.student_id", "s.name", "s.major", "s.grade"))
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"s.status": filter.Status})
	}
	if filter.Major != "" {
		where = append(where, squirrel.Eq{"s.major": filter.Major})
	}
	if filter.Grade != "" {
		where = append(where, squirrel.Eq{"s.grade": filter.Grade})
	}

	rows := psql.Select(studentColumns).From("students s").Where(where).OrderBy("s.created_at ASC", "s.id ASC")
	count := psql.Select("COUNT(*)").From("students s").Where(where)

	students := []models.Student{}
	total, err := selectPage(ctx, r.db, &students, rows, count, filter.PageRequest, "students")
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// FindByID fetches a student by primary key.
func (r *StudentRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students s WHERE s.id = $1`
	var student models.Student
	if err := sqlx.GetContext(ctx, target(r.db, exec), &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// EnrolledCourses lists the courses a student is currently enrolled in.
func (r *StudentRepository) EnrolledCourses(ctx context.Context, studentID string) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + `, ` + courseSeatsColumn + `
        FROM courses c JOIN enrollments e ON e.course_id = c.id
        WHERE e.student_id = $1 AND e.status = $2
        ORDER BY e.enrollment_date ASC, c.id ASC`
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query, studentID, models.EnrollmentStatusEnrolled); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return courses, nil
}

// BorrowedBooks lists the books a student currently holds.
func (r *StudentRepository) BorrowedBooks(ctx context.Context, studentID string) ([]models.Book, error) {
	q, args, err := psql.Select(bookColumns, bookCopiesColumns).
		From("books b").
		Join("borrow_records br ON br.book_id = b.id").
		Where(squirrel.Eq{"br.student_id": studentID, "br.status": activeBorrowStatuses()}).
		OrderBy("br.borrow_date DESC", "b.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build borrowed books: %w", err)
	}
	books := []models.Book{}
	if err := r.db.SelectContext(ctx, &books, q, args...); err != nil {
		return nil, fmt.Errorf("list borrowed books: %w", err)
	}
	return books, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = now.Truncate(24 * time.Hour)
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	const query = `INSERT INTO students (id, student_id, name, id_card, gender, age, major, grade, class_name, email, phone, address, status, enrollment_date, created_at, updated_at)
        VALUES (:id, :student_id, :name, :id_card, :gender, :age, :major, :grade, :class_name, :email, :phone, :address, :status, :enrollment_date, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of a student.
func (r *StudentRepository) Update(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET student_id = :student_id, name = :name, id_card = :id_card, gender = :gender, age = :age,
        major = :major, grade = :grade, class_name = :class_name, email = :email, phone = :phone, address = :address,
        status = :status, enrollment_date = :enrollment_date, updated_at = :updated_at WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return expectAffected(result, "student")
}

// Delete removes a student; enrollments and borrow records cascade.
func (r *StudentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := target(r.db, exec).ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return expectAffected(result, "student")
}
