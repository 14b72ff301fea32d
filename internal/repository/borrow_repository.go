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

const borrowDetailColumns = `br.id, br.student_id, br.book_id, br.borrow_date, br.due_date, br.return_date, br.status,
        br.fine_amount, br.fine_paid, br.notes, br.created_at, br.updated_at,
        s.name AS student_name, s.student_id AS student_student_id, b.title AS book_title, b.isbn AS book_isbn`

const borrowFrom = `borrow_records br JOIN students s ON s.id = br.student_id JOIN books b ON b.id = br.book_id`

// BorrowRepository persists loan records.
type BorrowRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewBorrowRepository constructs a BorrowRepository.
func NewBorrowRepository(db *sqlx.DB) *BorrowRepository {
	return &BorrowRepository{db: db, now: time.Now}
}

// List returns loans newest first, or most overdue first when OrderByDue is set.
func (r *BorrowRepository) List(ctx context.Context, filter models.BorrowFilter) ([]models.BorrowRecordDetail, int, error) {
	where := squirrel.And{}
	if filter.StudentID != "" {
		where = append(where, squirrel.Eq{"br.student_id": filter.StudentID})
	}
	if filter.BookID != "" {
		where = append(where, squirrel.Eq{"br.book_id": filter.BookID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"br.status": filter.Status})
	}
	if filter.OverdueOnly {
		where = append(where,
			squirrel.Eq{"br.status": activeBorrowStatuses()},
			squirrel.Lt{"br.due_date": r.now().UTC()},
		)
	}

	order := []string{"br.borrow_date DESC", "br.id ASC"}
	if filter.OrderByDue {
		order = []string{"br.due_date ASC", "br.id ASC"}
	}

	rows := psql.Select(borrowDetailColumns).From(borrowFrom).Where(where).OrderBy(order...)
	count := psql.Select("COUNT(*)").From("borrow_records br").Where(where)

	records := []models.BorrowRecordDetail{}
	total, err := selectPage(ctx, r.db, &records, rows, count, filter.PageRequest, "borrow records")
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// FindByID fetches a loan with its labels.
func (r *BorrowRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BorrowRecordDetail, error) {
	query := `SELECT ` + borrowDetailColumns + ` FROM ` + borrowFrom + ` WHERE br.id = $1`
	var record models.BorrowRecordDetail
	if err := sqlx.GetContext(ctx, target(r.db, exec), &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// CountActiveByStudent counts the copies a student currently holds.
func (r *BorrowRepository) CountActiveByStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) (int, error) {
	q, args, err := psql.Select("COUNT(*)").From("borrow_records").
		Where(squirrel.Eq{"student_id": studentID, "status": activeBorrowStatuses()}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build active borrow count: %w", err)
	}
	var total int
	if err := sqlx.GetContext(ctx, target(r.db, exec), &total, q, args...); err != nil {
		return 0, fmt.Errorf("count active borrows: %w", err)
	}
	return total, nil
}

// HasActive reports whether the student already holds a copy of the book.
func (r *BorrowRepository) HasActive(ctx context.Context, exec sqlx.ExtContext, studentID, bookID string) (bool, error) {
	q, args, err := psql.Select("COUNT(*)").From("borrow_records").
		Where(squirrel.Eq{"student_id": studentID, "book_id": bookID, "status": activeBorrowStatuses()}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build active borrow check: %w", err)
	}
	var total int
	if err := sqlx.GetContext(ctx, target(r.db, exec), &total, q, args...); err != nil {
		return false, fmt.Errorf("check active borrow: %w", err)
	}
	return total > 0, nil
}

// Create inserts a new loan.
func (r *BorrowRepository) Create(ctx context.Context, exec sqlx.ExtContext, record *models.BorrowRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.Status == "" {
		record.Status = models.BorrowStatusBorrowed
	}
	const query = `INSERT INTO borrow_records (id, student_id, book_id, borrow_date, due_date, return_date, status, fine_amount, fine_paid, notes, created_at, updated_at)
        VALUES (:id, :student_id, :book_id, :borrow_date, :due_date, :return_date, :status, :fine_amount, :fine_paid, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, record); err != nil {
		return fmt.Errorf("create borrow record: %w", err)
	}
	return nil
}

// Update persists lifecycle, fine and note changes.
func (r *BorrowRepository) Update(ctx context.Context, exec sqlx.ExtContext, record *models.BorrowRecord) error {
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE borrow_records SET due_date = :due_date, return_date = :return_date, status = :status, fine_amount = :fine_amount,
        fine_paid = :fine_paid, notes = :notes, updated_at = :updated_at WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, record)
	if err != nil {
		return fmt.Errorf("update borrow record: %w", err)
	}
	return expectAffected(result, "borrow record")
}

// Delete removes a loan.
func (r *BorrowRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := target(r.db, exec).ExecContext(ctx, `DELETE FROM borrow_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete borrow record: %w", err)
	}
	return expectAffected(result, "borrow record")
}

// MarkOverdue flips borrowed loans past due at asOf to overdue and returns how many changed.
func (r *BorrowRepository) MarkOverdue(ctx context.Context, exec sqlx.ExtContext, asOf time.Time) (int64, error) {
	const query = `UPDATE borrow_records SET status = $1, updated_at = $2 WHERE status = $3 AND due_date < $2`
	result, err := target(r.db, exec).ExecContext(ctx, query, models.BorrowStatusOverdue, asOf.UTC(), models.BorrowStatusBorrowed)
	if err != nil {
		return 0, fmt.Errorf("mark overdue borrow records: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("overdue rows affected: %w", err)
	}
	return affected, nil
}
