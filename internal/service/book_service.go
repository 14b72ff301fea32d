package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/pkg/config"
)

type bookRepository interface {
	List(ctx context.Context, filter models.BookFilter) ([]models.Book, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Book, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) error
	Create(ctx context.Context, exec sqlx.ExtContext, book *models.Book) error
	Update(ctx context.Context, exec sqlx.ExtContext, book *models.Book) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

// CreateBookRequest holds payload for cataloguing a book.
type CreateBookRequest struct {
	ISBN        string            `json:"isbn" validate:"required,isbn"`
	Title       string            `json:"title" validate:"required,max=200"`
	Author      string            `json:"author" validate:"required,max=100"`
	Publisher   string            `json:"publisher" validate:"required,max=100"`
	PublishDate string            `json:"publish_date" validate:"omitempty,datetime=2006-01-02"`
	Category    string            `json:"category" validate:"max=50"`
	Tags        string            `json:"tags" validate:"max=200"`
	TotalCopies *int              `json:"total_copies" validate:"omitnil,gt=0,lte=1000"`
	Location    string            `json:"location" validate:"max=100"`
	Description string            `json:"description"`
	Pages       int               `json:"pages" validate:"min=0"`
	Language    string            `json:"language" validate:"max=20"`
	Status      models.BookStatus `json:"status" validate:"omitempty,oneof=available unavailable"`
}

// UpdateBookRequest carries a partial update.
type UpdateBookRequest struct {
	ISBN        *string            `json:"isbn" validate:"omitnil,isbn"`
	Title       *string            `json:"title" validate:"omitnil,min=1,max=200"`
	Author      *string            `json:"author" validate:"omitnil,min=1,max=100"`
	Publisher   *string            `json:"publisher" validate:"omitnil,min=1,max=100"`
	PublishDate *string            `json:"publish_date" validate:"omitnil,datetime=2006-01-02"`
	Category    *string            `json:"category" validate:"omitnil,max=50"`
	Tags        *string            `json:"tags" validate:"omitnil,max=200"`
	TotalCopies *int               `json:"total_copies" validate:"omitnil,gt=0,lte=1000"`
	Location    *string            `json:"location" validate:"omitnil,max=100"`
	Description *string            `json:"description"`
	Pages       *int               `json:"pages" validate:"omitnil,min=0"`
	Language    *string            `json:"language" validate:"omitnil,max=20"`
	Status      *models.BookStatus `json:"status" validate:"omitnil,oneof=available unavailable"`
}

// BookService handles catalogue use-cases.
type BookService struct {
	repo      bookRepository
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
	paging    config.PagingConfig
}

// NewBookService constructs the book service.
func NewBookService(repo bookRepository, tx transactor, validate *validator.Validate, logger *zap.Logger, paging config.PagingConfig) *BookService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookService{repo: repo, tx: tx, validator: validate, logger: logger, paging: paging}
}

// List returns books with live copy counts.
func (s *BookService) List(ctx context.Context, filter models.BookFilter) ([]models.Book, *models.Pagination, error) {
	filter.PageRequest = window(filter.PageRequest, s.paging)
	books, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internal(err, "failed to list books")
	}
	return books, paginate(filter.PageRequest, total), nil
}

// Get returns one book.
func (s *BookService) Get(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storeError(err, "book not found", "failed to load book")
	}
	return book, nil
}

// Create catalogues a new title.
func (s *BookService) Create(ctx context.Context, req CreateBookRequest) (*models.Book, error) {
	req.ISBN = strings.TrimSpace(req.ISBN)
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "book")
	}

	book := &models.Book{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		PublishDate: parseDate(req.PublishDate),
		Category:    req.Category,
		Tags:        req.Tags,
		Location:    req.Location,
		Description: req.Description,
		Pages:       req.Pages,
		Language:    req.Language,
		Status:      req.Status,
	}
	if req.TotalCopies != nil {
		book.TotalCopies = *req.TotalCopies
	}

	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		return s.repo.Create(ctx, exec, book)
	})
	if err != nil {
		return nil, storeError(err, "book not found", "failed to create book")
	}
	s.logger.Info("book created", zap.String("id", book.ID), zap.String("isbn", book.ISBN))
	return book, nil
}

// Update applies the supplied fields to a book.
func (s *BookService) Update(ctx context.Context, id string, req UpdateBookRequest) (*models.Book, error) {
	req.ISBN = trimPtr(req.ISBN)
	req.Title = trimPtr(req.Title)
	// A blank publish date clears the column.
	check := req
	check.PublishDate = emptyToNil(req.PublishDate)
	if err := s.validator.Struct(check); err != nil {
		return nil, invalid(err, "book")
	}

	var book *models.Book
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		if err := s.repo.LockByID(ctx, exec, id); err != nil {
			return err
		}
		current, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return err
		}
		applyBookUpdate(current, req)
		if current.TotalCopies < current.BorrowedCopies {
			return businessRule("total copies cannot be lower than copies on loan")
		}
		if err := s.repo.Update(ctx, exec, current); err != nil {
			return err
		}
		current.AvailableCopies = current.TotalCopies - current.BorrowedCopies
		book = current
		return nil
	})
	if err != nil {
		return nil, storeError(err, "book not found", "failed to update book")
	}
	return book, nil
}

// Delete removes a book that has no copies out on loan.
func (s *BookService) Delete(ctx context.Context, id string) error {
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		if err := s.repo.LockByID(ctx, exec, id); err != nil {
			return err
		}
		book, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if book.BorrowedCopies > 0 {
			return businessRule("book has unreturned borrow records")
		}
		return s.repo.Delete(ctx, exec, id)
	})
	if err != nil {
		return storeError(err, "book not found", "failed to delete book")
	}
	s.logger.Info("book deleted", zap.String("id", id))
	return nil
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	return &d
}

func applyBookUpdate(book *models.Book, req UpdateBookRequest) {
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Publisher != nil {
		book.Publisher = *req.Publisher
	}
	if req.PublishDate != nil {
		book.PublishDate = parseDate(*req.PublishDate)
	}
	if req.Category != nil {
		book.Category = *req.Category
	}
	if req.Tags != nil {
		book.Tags = *req.Tags
	}
	if req.TotalCopies != nil {
		book.TotalCopies = *req.TotalCopies
	}
	if req.Location != nil {
		book.Location = *req.Location
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Pages != nil {
		book.Pages = *req.Pages
	}
	if req.Language != nil {
		book.Language = *req.Language
	}
	if req.Status != nil {
		book.Status = *req.Status
	}
}
