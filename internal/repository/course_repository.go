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

const courseColumns = `c.id, c.code, c.name, c.credits, c.hours, c.teacher, c.semester, c.classroom, c.schedule,
        c.description, c.prerequisites, c.max_students, c.status, c.created_at, c.updated_at`

const courseSeatsColumn = `(SELECT COUNT(*) FROM enrollments en WHERE en.course_id = c.id AND en.status = 'enrolled') AS current_students`

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses with their live enrolled count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		where = append(where, containsAny(filter.Search, "c.code", "c.name", "c.teacher", "c.semester"))
	}
	if filter.Semester != "" {
		where = append(where, squirrel.Eq{"c.semester": filter.Semester})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"c.status": filter.Status})
	}

	rows := psql.Select(courseColumns, courseSeatsColumn).From("courses c").Where(where).OrderBy("c.created_at ASC", "c.id ASC")
	count := psql.Select("COUNT(*)").From("courses c").Where(where)

	courses := []models.Course{}
	total, err := selectPage(ctx, r.db, &courses, rows, count, filter.PageRequest, "courses")
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// FindByID fetches a course and its enrolled count.
func (r *CourseRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + `, ` + courseSeatsColumn + ` FROM courses c WHERE c.id = $1`
	var course models.Course
	if err := sqlx.GetContext(ctx, target(r.db, exec), &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// LockByID takes a row lock on the course for the rest of the transaction.
func (r *CourseRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) error {
	var locked string
	return sqlx.GetContext(ctx, target(r.db, exec), &locked, `SELECT id FROM courses WHERE id = $1 FOR UPDATE`, id)
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, exec sqlx.ExtContext, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	if course.MaxStudents == 0 {
		course.MaxStudents = models.DefaultMaxStudents
	}
	if course.Status == "" {
		course.Status = models.CourseStatusActive
	}
	const query = `INSERT INTO courses (id, code, name, credits, hours, teacher, semester, classroom, schedule, description, prerequisites, max_students, status, created_at, updated_at)
        VALUES (:id, :code, :name, :credits, :hours, :teacher, :semester, :classroom, :schedule, :description, :prerequisites, :max_students, :status, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of a course.
func (r *CourseRepository) Update(ctx context.Context, exec sqlx.ExtContext, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET code = :code, name = :name, credits = :credits, hours = :hours, teacher = :teacher,
        semester = :semester, classroom = :classroom, schedule = :schedule, description = :description,
        prerequisites = :prerequisites, max_students = :max_students, status = :status, updated_at = :updated_at WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return expectAffected(result, "course")
}

// Delete removes a course; its enrollments cascade.
func (r *CourseRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := target(r.db, exec).ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return expectAffected(result, "course")
}
