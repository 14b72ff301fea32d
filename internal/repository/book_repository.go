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

const bookColumns = `b.id, b.isbn, b.title, b.author, b.publisher, b.publish_date, b.category, b.tags, b.total_copies,
        b.location, b.description, b.pages, b.language, b.status, b.created_at, b.updated_at`

const bookBorrowedExpr = `(SELECT COUNT(*) FROM borrow_records bc WHERE bc.book_id = b.id AND bc.status IN ('borrowed', 'overdue'))`

const bookCopiesColumns = bookBorrowedExpr + ` AS borrowed_copies, b.total_copies - ` + bookBorrowedExpr + ` AS available_copies`

// BookRepository manages persistence for the catalogue.
type BookRepository struct {
	db *sqlx.DB
}

// NewBookRepository constructs a BookRepository.
func NewBookRepository(db *sqlx.DB) *BookRepository {
	return &BookRepository{db: db}
}

// List returns books with live copy counts.
func (r *BookRepository) List(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		where = append(where, containsAny(filter.Search, "b.isbn", "b.title", "b.author", "b.publisher", "b.category"))
	}
	if filter.Category != "" {
		where = append(where, squirrel.Eq{"b.category": filter.Category})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"b.status": filter.Status})
	}
	if filter.AvailableOnly {
		where = append(where,
			squirrel.Eq{"b.status": models.BookStatusAvailable},
			squirrel.Expr("b.total_copies > "+bookBorrowedExpr),
		)
	}

	rows := psql.Select(bookColumns, bookCopiesColumns).From("books b").Where(where).OrderBy("b.created_at ASC", "b.id ASC")
	count := psql.Select("COUNT(*)").From("books b").Where(where)

	books := []models.Book{}
	total, err := selectPage(ctx, r.db, &books, rows, count, filter.PageRequest, "books")
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// FindByID fetches a book with its live copy counts.
func (r *BookRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Book, error) {
	query := `SELECT ` + bookColumns + `, ` + bookCopiesColumns + ` FROM books b WHERE b.id = $1`
	var book models.Book
	if err := sqlx.GetContext(ctx, target(r.db, exec), &book, query, id); err != nil {
		return nil, err
	}
	return &book, nil
}

// LockByID takes a row lock on the book so concurrent loans serialize on it.
func (r *BookRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) error {
	var locked string
	return sqlx.GetContext(ctx, target(r.db, exec), &locked, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, id)
}

// Create inserts a new book.
func (r *BookRepository) Create(ctx context.Context, exec sqlx.ExtContext, book *models.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now
	if book.TotalCopies == 0 {
		book.TotalCopies = 1
	}
	if book.Language == "" {
		book.Language = models.DefaultBookLanguage
	}
	if book.Status == "" {
		book.Status = models.BookStatusAvailable
	}
	const query = `INSERT INTO books (id, isbn, title, author, publisher, publish_date, category, tags, total_copies, location, description, pages, language, status, created_at, updated_at)
        VALUES (:id, :isbn, :title, :author, :publisher, :publish_date, :category, :tags, :total_copies, :location, :description, :pages, :language, :status, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, book); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	book.BorrowedCopies = 0
	book.AvailableCopies = book.TotalCopies
	return nil
}

// Update overwrites the mutable columns of a book.
func (r *BookRepository) Update(ctx context.Context, exec sqlx.ExtContext, book *models.Book) error {
	book.UpdatedAt = time.Now().UTC()
	const query = `UPDATE books SET isbn = :isbn, title = :title, author = :author, publisher = :publisher, publish_date = :publish_date,
        category = :category, tags = :tags, total_copies = :total_copies, location = :location, description = :description,
        pages = :pages, language = :language, status = :status, updated_at = :updated_at WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, book)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return expectAffected(result, "book")
}

// Delete removes a book; its borrow history cascades.
func (r *BookRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	result, err := target(r.db, exec).ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return expectAffected(result, "book")
}
