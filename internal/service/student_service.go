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

const dateLayout = "2006-01-02"

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Student, error)
	EnrolledCourses(ctx context.Context, studentID string) ([]models.Course, error)
	BorrowedBooks(ctx context.Context, studentID string) ([]models.Book, error)
	Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
	Update(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

// CreateStudentRequest holds payload for registering a student.
type CreateStudentRequest struct {
	StudentID      string               `json:"student_id" validate:"required,max=20"`
	Name           string               `json:"name" validate:"required,max=50"`
	IDCard         string               `json:"id_card" validate:"required,idcard"`
	Gender         string               `json:"gender" validate:"required,max=10"`
	Age            *int                 `json:"age" validate:"required,min=0,max=150"`
	Major          string               `json:"major" validate:"required,max=100"`
	Grade          string               `json:"grade" validate:"required,max=20"`
	ClassName      string               `json:"class_name" validate:"max=50"`
	Email          *string              `json:"email" validate:"omitnil,email,max=120"`
	Phone          string               `json:"phone" validate:"max=20"`
	Address        string               `json:"address"`
	Status         models.StudentStatus `json:"status" validate:"omitempty,oneof=active graduated suspended"`
	EnrollmentDate string               `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateStudentRequest carries a partial update; nil fields are left untouched.
type UpdateStudentRequest struct {
	StudentID      *string               `json:"student_id" validate:"omitnil,min=1,max=20"`
	Name           *string               `json:"name" validate:"omitnil,min=1,max=50"`
	IDCard         *string               `json:"id_card" validate:"omitnil,idcard"`
	Gender         *string               `json:"gender" validate:"omitnil,min=1,max=10"`
	Age            *int                  `json:"age" validate:"omitnil,min=0,max=150"`
	Major          *string               `json:"major" validate:"omitnil,min=1,max=100"`
	Grade          *string               `json:"grade" validate:"omitnil,min=1,max=20"`
	ClassName      *string               `json:"class_name" validate:"omitnil,max=50"`
	Email          *string               `json:"email" validate:"omitnil,email,max=120"`
	Phone          *string               `json:"phone" validate:"omitnil,max=20"`
	Address        *string               `json:"address"`
	Status         *models.StudentStatus `json:"status" validate:"omitnil,oneof=active graduated suspended"`
	EnrollmentDate *string               `json:"enrollment_date" validate:"omitnil,datetime=2006-01-02"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
	paging    config.PagingConfig
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, tx transactor, validate *validator.Validate, logger *zap.Logger, paging config.PagingConfig) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, tx: tx, validator: validate, logger: logger, paging: paging}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	filter.PageRequest = window(filter.PageRequest, s.paging)
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internal(err, "failed to list students")
	}
	return students, paginate(filter.PageRequest, total), nil
}

// Get returns the student with their current courses and books on loan.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storeError(err, "student not found", "failed to load student")
	}
	courses, err := s.repo.EnrolledCourses(ctx, id)
	if err != nil {
		return nil, internal(err, "failed to load student courses")
	}
	books, err := s.repo.BorrowedBooks(ctx, id)
	if err != nil {
		return nil, internal(err, "failed to load student books")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	if books == nil {
		books = []models.Book{}
	}
	return &models.StudentDetail{Student: *student, EnrolledCourses: courses, BorrowedBooks: books}, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Name = strings.TrimSpace(req.Name)
	req.IDCard = strings.TrimSpace(req.IDCard)
	req.Email = emptyToNil(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "student")
	}

	student := &models.Student{
		StudentID: req.StudentID,
		Name:      req.Name,
		IDCard:    req.IDCard,
		Gender:    req.Gender,
		Age:       *req.Age,
		Major:     req.Major,
		Grade:     req.Grade,
		ClassName: req.ClassName,
		Email:     emptyToNil(req.Email),
		Phone:     req.Phone,
		Address:   req.Address,
		Status:    req.Status,
	}
	if req.EnrollmentDate != "" {
		student.EnrollmentDate, _ = time.Parse(dateLayout, req.EnrollmentDate)
	}

	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		return s.repo.Create(ctx, exec, student)
	})
	if err != nil {
		return nil, storeError(err, "student not found", "failed to create student")
	}
	s.logger.Info("student created", zap.String("id", student.ID), zap.String("student_id", student.StudentID))
	return student, nil
}

// Update applies the supplied fields to an existing student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	req.StudentID = trimPtr(req.StudentID)
	req.Name = trimPtr(req.Name)
	req.IDCard = trimPtr(req.IDCard)
	// A blank email clears the column, so only a non-blank one is checked.
	check := req
	check.Email = emptyToNil(req.Email)
	if err := s.validator.Struct(check); err != nil {
		return nil, invalid(err, "student")
	}

	var student *models.Student
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		current, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return err
		}
		applyStudentUpdate(current, req)
		if err := s.repo.Update(ctx, exec, current); err != nil {
			return err
		}
		student = current
		return nil
	})
	if err != nil {
		return nil, storeError(err, "student not found", "failed to update student")
	}
	return student, nil
}

// Delete removes a student together with their enrollments and loans.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		return s.repo.Delete(ctx, exec, id)
	})
	if err != nil {
		return storeError(err, "student not found", "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("id", id))
	return nil
}

func applyStudentUpdate(student *models.Student, req UpdateStudentRequest) {
	if req.StudentID != nil {
		student.StudentID = *req.StudentID
	}
	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.IDCard != nil {
		student.IDCard = *req.IDCard
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.Age != nil {
		student.Age = *req.Age
	}
	if req.Major != nil {
		student.Major = *req.Major
	}
	if req.Grade != nil {
		student.Grade = *req.Grade
	}
	if req.ClassName != nil {
		student.ClassName = *req.ClassName
	}
	if req.Email != nil {
		student.Email = emptyToNil(req.Email)
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.Address != nil {
		student.Address = *req.Address
	}
	if req.Status != nil {
		student.Status = *req.Status
	}
	if req.EnrollmentDate != nil {
		if d, err := time.Parse(dateLayout, *req.EnrollmentDate); err == nil {
			student.EnrollmentDate = d
		}
	}
}
