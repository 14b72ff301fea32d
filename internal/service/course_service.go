package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/pkg/config"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Course, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) error
	Create(ctx context.Context, exec sqlx.ExtContext, course *models.Course) error
	Update(ctx context.Context, exec sqlx.ExtContext, course *models.Course) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	Code          string              `json:"code" validate:"required,max=20"`
	Name          string              `json:"name" validate:"required,max=100"`
	Credits       *float64            `json:"credits" validate:"required,gt=0,lte=10"`
	Hours         int                 `json:"hours" validate:"min=0"`
	Teacher       string              `json:"teacher" validate:"required,max=50"`
	Semester      string              `json:"semester" validate:"required,max=20"`
	Classroom     string              `json:"classroom" validate:"max=50"`
	Schedule      string              `json:"schedule" validate:"max=100"`
	Description   string              `json:"description"`
	Prerequisites string              `json:"prerequisites"`
	MaxStudents   *int                `json:"max_students" validate:"omitnil,gt=0"`
	Status        models.CourseStatus `json:"status" validate:"omitempty,oneof=active closed finished"`
}

// UpdateCourseRequest carries a partial update.
type UpdateCourseRequest struct {
	Code          *string              `json:"code" validate:"omitnil,min=1,max=20"`
	Name          *string              `json:"name" validate:"omitnil,min=1,max=100"`
	Credits       *float64             `json:"credits" validate:"omitnil,gt=0,lte=10"`
	Hours         *int                 `json:"hours" validate:"omitnil,min=0"`
	Teacher       *string              `json:"teacher" validate:"omitnil,min=1,max=50"`
	Semester      *string              `json:"semester" validate:"omitnil,min=1,max=20"`
	Classroom     *string              `json:"classroom" validate:"omitnil,max=50"`
	Schedule      *string              `json:"schedule" validate:"omitnil,max=100"`
	Description   *string              `json:"description"`
	Prerequisites *string              `json:"prerequisites"`
	MaxStudents   *int                 `json:"max_students" validate:"omitnil,gt=0"`
	Status        *models.CourseStatus `json:"status" validate:"omitnil,oneof=active closed finished"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo      courseRepository
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
	paging    config.PagingConfig
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, tx transactor, validate *validator.Validate, logger *zap.Logger, paging config.PagingConfig) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, tx: tx, validator: validate, logger: logger, paging: paging}
}

// List returns courses with their enrolled counts.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	filter.PageRequest = window(filter.PageRequest, s.paging)
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internal(err, "failed to list courses")
	}
	return courses, paginate(filter.PageRequest, total), nil
}

// Get returns one course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storeError(err, "course not found", "failed to load course")
	}
	return course, nil
}

// Create opens a new course.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "course")
	}

	course := &models.Course{
		Code:          req.Code,
		Name:          req.Name,
		Credits:       *req.Credits,
		Hours:         req.Hours,
		Teacher:       req.Teacher,
		Semester:      req.Semester,
		Classroom:     req.Classroom,
		Schedule:      req.Schedule,
		Description:   req.Description,
		Prerequisites: req.Prerequisites,
		Status:        req.Status,
	}
	if req.MaxStudents != nil {
		course.MaxStudents = *req.MaxStudents
	}

	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		return s.repo.Create(ctx, exec, course)
	})
	if err != nil {
		return nil, storeError(err, "course not found", "failed to create course")
	}
	s.logger.Info("course created", zap.String("id", course.ID), zap.String("code", course.Code))
	return course, nil
}

// Update applies the supplied fields to a course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	req.Code = trimPtr(req.Code)
	req.Name = trimPtr(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "course")
	}

	var course *models.Course
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		current, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return err
		}
		applyCourseUpdate(current, req)
		if err := s.repo.Update(ctx, exec, current); err != nil {
			return err
		}
		course = current
		return nil
	})
	if err != nil {
		return nil, storeError(err, "course not found", "failed to update course")
	}
	return course, nil
}

// Delete removes a course that nobody is currently enrolled in.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		if err := s.repo.LockByID(ctx, exec, id); err != nil {
			return err
		}
		course, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if course.CurrentStudents > 0 {
			return businessRule("course has enrolled students")
		}
		return s.repo.Delete(ctx, exec, id)
	})
	if err != nil {
		return storeError(err, "course not found", "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("id", id))
	return nil
}

func applyCourseUpdate(course *models.Course, req UpdateCourseRequest) {
	if req.Code != nil {
		course.Code = *req.Code
	}
	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	if req.Hours != nil {
		course.Hours = *req.Hours
	}
	if req.Teacher != nil {
		course.Teacher = *req.Teacher
	}
	if req.Semester != nil {
		course.Semester = *req.Semester
	}
	if req.Classroom != nil {
		course.Classroom = *req.Classroom
	}
	if req.Schedule != nil {
		course.Schedule = *req.Schedule
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Prerequisites != nil {
		course.Prerequisites = *req.Prerequisites
	}
	if req.MaxStudents != nil {
		course.MaxStudents = *req.MaxStudents
	}
	if req.Status != nil {
		course.Status = *req.Status
	}
}
