package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/pkg/config"
	"github.com/noah-isme/campus-registrar-api/pkg/middleware/requestid"
)

// Borrow actions accepted by Update.
const (
	BorrowActionReturn  = "return"
	BorrowActionExtend  = "extend"
	BorrowActionLost    = "lost"
	BorrowActionPayFine = "pay_fine"
)

// DefaultLibraryRules mirror the configuration defaults.
var DefaultLibraryRules = config.LibraryConfig{BorrowLimit: 5, BorrowDays: 30, ExtendDays: 7, DailyFine: 1.0, LostFine: 50.0}

type borrowRepository interface {
	List(ctx context.Context, filter models.BorrowFilter) ([]models.BorrowRecordDetail, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BorrowRecordDetail, error)
	CountActiveByStudent(ctx context.Context, exec sqlx.ExtContext, studentID string) (int, error)
	HasActive(ctx context.Context, exec sqlx.ExtContext, studentID, bookID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, record *models.BorrowRecord) error
	Update(ctx context.Context, exec sqlx.ExtContext, record *models.BorrowRecord) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
	MarkOverdue(ctx context.Context, exec sqlx.ExtContext, asOf time.Time) (int64, error)
}

type bookStock interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Book, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) error
}

// BorrowRequest describes a new loan.
type BorrowRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	BookID    string `json:"book_id" validate:"required,uuid"`
	Notes     string `json:"notes"`
}

// UpdateBorrowRequest drives PUT /borrows/{id}.
type UpdateBorrowRequest struct {
	Action     string   `json:"action" validate:"omitempty,oneof=return extend lost pay_fine"`
	FineAmount *float64 `json:"fine_amount" validate:"omitnil,gte=0"`
	Days       *int     `json:"days" validate:"omitnil,gt=0"`
	DueDate    *string  `json:"due_date" validate:"omitnil,datetime=2006-01-02"`
	Notes      *string  `json:"notes"`
}

// BorrowService owns the loan lifecycle.
type BorrowService struct {
	repo      borrowRepository
	students  studentReader
	books     bookStock
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
	paging    config.PagingConfig
	rules     config.LibraryConfig
	metrics   lifecycleRecorder
	now       func() time.Time
}

// NewBorrowService constructs BorrowService.
func NewBorrowService(repo borrowRepository, students studentReader, books bookStock, tx transactor, validate *validator.Validate, logger *zap.Logger, paging config.PagingConfig, rules config.LibraryConfig) *BorrowService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules.BorrowLimit <= 0 {
		rules.BorrowLimit = DefaultLibraryRules.BorrowLimit
	}
	if rules.BorrowDays <= 0 {
		rules.BorrowDays = DefaultLibraryRules.BorrowDays
	}
	if rules.ExtendDays <= 0 {
		rules.ExtendDays = DefaultLibraryRules.ExtendDays
	}
	return &BorrowService{
		repo:      repo,
		students:  students,
		books:     books,
		tx:        tx,
		validator: validate,
		logger:    logger,
		paging:    paging,
		rules:     rules,
		metrics:   noopRecorder{},
		now:       time.Now,
	}
}

// WithMetrics attaches a lifecycle recorder.
func (s *BorrowService) WithMetrics(recorder lifecycleRecorder) *BorrowService {
	if recorder != nil {
		s.metrics = recorder
	}
	return s
}

// List returns loans annotated with their live overdue state.
func (s *BorrowService) List(ctx context.Context, filter models.BorrowFilter) ([]models.BorrowRecordDetail, *models.Pagination, error) {
	filter.PageRequest = window(filter.PageRequest, s.paging)
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internal(err, "failed to list borrow records")
	}
	now := s.now()
	for i := range records {
		records[i].Annotate(now)
	}
	return records, paginate(filter.PageRequest, total), nil
}

// ListOverdue returns active loans past due, most overdue first.
func (s *BorrowService) ListOverdue(ctx context.Context, page models.PageRequest) ([]models.BorrowRecordDetail, *models.Pagination, error) {
	return s.List(ctx, models.BorrowFilter{OverdueOnly: true, OrderByDue: true, PageRequest: page})
}

// Get returns one loan.
func (s *BorrowService) Get(ctx context.Context, id string) (*models.BorrowRecordDetail, error) {
	record, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storeError(err, "borrow record not found", "failed to load borrow record")
	}
	record.Annotate(s.now())
	return record, nil
}

// Borrow lends one copy of a book to a student.
func (s *BorrowService) Borrow(ctx context.Context, req BorrowRequest) (*models.BorrowRecordDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "borrow")
	}

	now := s.now().UTC()
	var result *models.BorrowRecordDetail
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		if _, err := s.students.FindByID(ctx, exec, req.StudentID); err != nil {
			return notFoundAs(err, "student not found")
		}
		if err := s.books.LockByID(ctx, exec, req.BookID); err != nil {
			return notFoundAs(err, "book not found")
		}

		held, err := s.repo.HasActive(ctx, exec, req.StudentID, req.BookID)
		if err != nil {
			return err
		}
		if held {
			return businessRule("student already borrowed this book")
		}

		book, err := s.books.FindByID(ctx, exec, req.BookID)
		if err != nil {
			return notFoundAs(err, "book not found")
		}
		if !book.CanBorrow() {
			return businessRule("book unavailable")
		}

		active, err := s.repo.CountActiveByStudent(ctx, exec, req.StudentID)
		if err != nil {
			return err
		}
		if active >= s.rules.BorrowLimit {
			return businessRule("borrow limit reached")
		}

		record := &models.BorrowRecord{
			StudentID:  req.StudentID,
			BookID:     req.BookID,
			BorrowDate: now,
			DueDate:    now.Add(time.Duration(s.rules.BorrowDays) * 24 * time.Hour),
			Status:     models.BorrowStatusBorrowed,
			Notes:      req.Notes,
		}
		if err := s.repo.Create(ctx, exec, record); err != nil {
			return err
		}
		detail, err := s.repo.FindByID(ctx, exec, record.ID)
		if err != nil {
			return err
		}
		result = detail
		return nil
	})
	if err != nil {
		return nil, storeError(err, "borrow record not found", "failed to borrow book")
	}
	result.Annotate(now)
	s.metrics.RecordLifecycle("borrow", "borrow")
	s.logger.Info("book borrowed",
		zap.String("borrow_id", result.ID),
		zap.String("student_id", req.StudentID),
		zap.String("book_id", req.BookID),
		zap.Time("due_date", result.DueDate),
		requestid.ContextField(ctx))
	return result, nil
}

// Return closes a loan. Without an explicit fine, overdue days are charged at the daily rate.
func (s *BorrowService) Return(ctx context.Context, id string, fine *float64) (*models.BorrowRecordDetail, error) {
	if fine != nil && *fine < 0 {
		return nil, invalidMessage("fine_amount must be at least 0")
	}
	return s.transition(ctx, id, BorrowActionReturn, func(r *models.BorrowRecord, now time.Time) error {
		if !r.Status.IsActive() {
			return businessRule("only borrowed or overdue records can be returned")
		}
		switch {
		case fine != nil:
			r.FineAmount = *fine
		case r.OverdueAt(now):
			r.FineAmount = float64(r.DaysOverdueAt(now)) * s.rules.DailyFine
		}
		r.Status = models.BorrowStatusReturned
		r.ReturnDate = &now
		return nil
	})
}

// Extend pushes the due date out. An overdue loan whose new due date is in the future becomes borrowed again.
func (s *BorrowService) Extend(ctx context.Context, id string, days *int) (*models.BorrowRecordDetail, error) {
	extra := s.rules.ExtendDays
	if days != nil {
		extra = *days
	}
	if extra <= 0 {
		return nil, invalidMessage("days must be greater than 0")
	}
	return s.transition(ctx, id, BorrowActionExtend, func(r *models.BorrowRecord, now time.Time) error {
		if !r.Status.IsActive() {
			return businessRule("only borrowed or overdue records can be extended")
		}
		r.DueDate = r.DueDate.Add(time.Duration(extra) * 24 * time.Hour)
		if r.Status == models.BorrowStatusOverdue && r.DueDate.After(now) {
			r.Status = models.BorrowStatusBorrowed
		}
		return nil
	})
}

// MarkLost closes a loan as lost and charges the lost-book fine unless one is given.
func (s *BorrowService) MarkLost(ctx context.Context, id string, fine *float64) (*models.BorrowRecordDetail, error) {
	amount := s.rules.LostFine
	if fine != nil {
		amount = *fine
	}
	if amount < 0 {
		return nil, invalidMessage("fine_amount must be at least 0")
	}
	return s.transition(ctx, id, BorrowActionLost, func(r *models.BorrowRecord, _ time.Time) error {
		if !r.Status.IsActive() {
			return businessRule("only borrowed or overdue records can be marked lost")
		}
		r.Status = models.BorrowStatusLost
		r.FineAmount = amount
		return nil
	})
}

// PayFine settles the fine on a record.
func (s *BorrowService) PayFine(ctx context.Context, id string) (*models.BorrowRecordDetail, error) {
	return s.transition(ctx, id, BorrowActionPayFine, func(r *models.BorrowRecord, _ time.Time) error {
		r.FinePaid = true
		return nil
	})
}

// Update dispatches on action; without one it edits notes and due date.
func (s *BorrowService) Update(ctx context.Context, id string, req UpdateBorrowRequest) (*models.BorrowRecordDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "borrow")
	}

	switch req.Action {
	case BorrowActionReturn:
		return s.Return(ctx, id, req.FineAmount)
	case BorrowActionExtend:
		return s.Extend(ctx, id, req.Days)
	case BorrowActionLost:
		return s.MarkLost(ctx, id, req.FineAmount)
	case BorrowActionPayFine:
		return s.PayFine(ctx, id)
	}

	return s.transition(ctx, id, "update", func(r *models.BorrowRecord, now time.Time) error {
		if req.Notes != nil {
			r.Notes = *req.Notes
		}
		if req.DueDate != nil {
			due := parseDate(*req.DueDate)
			if due == nil || due.Before(r.BorrowDate.Truncate(24*time.Hour)) {
				return invalidMessage("due_date must not be before borrow_date")
			}
			r.DueDate = *due
			if r.Status == models.BorrowStatusOverdue && r.DueDate.After(now) {
				r.Status = models.BorrowStatusBorrowed
			}
		}
		return nil
	})
}

// Delete removes a closed loan.
func (s *BorrowService) Delete(ctx context.Context, id string) error {
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		current, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if !current.Status.IsClosed() {
			return businessRule("only returned or lost records can be deleted")
		}
		return s.repo.Delete(ctx, exec, id)
	})
	if err != nil {
		return storeError(err, "borrow record not found", "failed to delete borrow record")
	}
	s.metrics.RecordLifecycle("borrow", "delete")
	s.logger.Info("borrow record deleted", zap.String("borrow_id", id))
	return nil
}

// UpdateOverdueStatus flips every borrowed loan past due to overdue and reports how many changed.
func (s *BorrowService) UpdateOverdueStatus(ctx context.Context) (int64, error) {
	flipped, err := s.repo.MarkOverdue(ctx, nil, s.now())
	if err != nil {
		return 0, internal(err, "failed to update overdue records")
	}
	if flipped > 0 {
		s.logger.Info("borrow records marked overdue", zap.Int64("count", flipped))
	}
	return flipped, nil
}

func (s *BorrowService) transition(ctx context.Context, id, action string, mutate func(*models.BorrowRecord, time.Time) error) (*models.BorrowRecordDetail, error) {
	now := s.now().UTC()
	var result *models.BorrowRecordDetail
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		current, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if err := mutate(&current.BorrowRecord, now); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, exec, &current.BorrowRecord); err != nil {
			return err
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, storeError(err, "borrow record not found", "failed to update borrow record")
	}
	result.Annotate(now)
	s.metrics.RecordLifecycle("borrow", action)
	s.logger.Info("borrow record updated",
		zap.String("borrow_id", id),
		zap.String("action", action),
		zap.String("status", string(result.Status)),
		zap.Float64("fine_amount", result.FineAmount),
		requestid.ContextField(ctx))
	return result, nil
}
