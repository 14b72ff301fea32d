package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/pkg/config"
	"github.com/noah-isme/campus-registrar-api/pkg/middleware/requestid"
)

// Enrollment actions accepted by Update.
const (
	EnrollmentActionDrop     = "drop"
	EnrollmentActionComplete = "complete"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.EnrollmentDetail, error)
	FindByPair(ctx context.Context, exec sqlx.ExtContext, studentID, courseID string) (*models.Enrollment, error)
	Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	Update(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type studentReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Student, error)
}

type courseSeats interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Course, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) error
}

// lifecycleRecorder counts lifecycle transitions; MetricsService satisfies it.
type lifecycleRecorder interface {
	RecordLifecycle(entity, action string)
}

type noopRecorder struct{}

func (noopRecorder) RecordLifecycle(string, string) {}

// EnrollRequest describes enrollment creation request.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	CourseID  string `json:"course_id" validate:"required,uuid"`
	Notes     string `json:"notes"`
}

// UpdateEnrollmentRequest drives PUT /enrollments/{id}.
type UpdateEnrollmentRequest struct {
	Action string                   `json:"action" validate:"omitempty,oneof=drop complete"`
	Status *models.EnrollmentStatus `json:"status" validate:"omitnil,oneof=enrolled dropped completed"`
	Grade  *float64                 `json:"grade" validate:"omitnil,gte=0,lte=100"`
	Notes  *string                  `json:"notes"`
}

// EnrollmentService orchestrates enrollment workflows.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentReader
	courses   courseSeats
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
	paging    config.PagingConfig
	metrics   lifecycleRecorder
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentReader, courses courseSeats, tx transactor, validate *validator.Validate, logger *zap.Logger, paging config.PagingConfig) *EnrollmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		students:  students,
		courses:   courses,
		tx:        tx,
		validator: validate,
		logger:    logger,
		paging:    paging,
		metrics:   noopRecorder{},
	}
}

// WithMetrics attaches a lifecycle recorder.
func (s *EnrollmentService) WithMetrics(recorder lifecycleRecorder) *EnrollmentService {
	if recorder != nil {
		s.metrics = recorder
	}
	return s
}

// List returns enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	filter.PageRequest = window(filter.PageRequest, s.paging)
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internal(err, "failed to list enrollments")
	}
	return enrollments, paginate(filter.PageRequest, total), nil
}

// Get returns one enrollment with its labels.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	enrollment, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storeError(err, "enrollment not found", "failed to load enrollment")
	}
	return enrollment, nil
}

// Enroll places a student into a course, reactivating a dropped enrollment when one exists.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "enrollment")
	}

	var result *models.EnrollmentDetail
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		if _, err := s.students.FindByID(ctx, exec, req.StudentID); err != nil {
			return notFoundAs(err, "student not found")
		}
		if err := s.courses.LockByID(ctx, exec, req.CourseID); err != nil {
			return notFoundAs(err, "course not found")
		}

		existing, err := s.repo.FindByPair(ctx, exec, req.StudentID, req.CourseID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if existing != nil {
			switch existing.Status {
			case models.EnrollmentStatusEnrolled:
				return businessRule("student already enrolled in course")
			case models.EnrollmentStatusCompleted:
				return businessRule("student already completed course")
			}
		}

		course, err := s.courses.FindByID(ctx, exec, req.CourseID)
		if err != nil {
			return notFoundAs(err, "course not found")
		}
		if !course.CanEnroll() {
			return businessRule("course full or closed")
		}

		var id string
		if existing != nil {
			existing.Status = models.EnrollmentStatusEnrolled
			existing.EnrollmentDate = time.Now().UTC()
			if req.Notes != "" {
				existing.Notes = req.Notes
			}
			if err := s.repo.Update(ctx, exec, existing); err != nil {
				return err
			}
			id = existing.ID
		} else {
			enrollment := &models.Enrollment{StudentID: req.StudentID, CourseID: req.CourseID, Notes: req.Notes}
			if err := s.repo.Create(ctx, exec, enrollment); err != nil {
				return err
			}
			id = enrollment.ID
		}

		detail, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return err
		}
		result = detail
		return nil
	})
	if err != nil {
		return nil, storeError(err, "enrollment not found", "failed to enroll student")
	}
	s.metrics.RecordLifecycle("enrollment", "enroll")
	s.logger.Info("student enrolled",
		zap.String("enrollment_id", result.ID),
		zap.String("student_id", req.StudentID),
		zap.String("course_id", req.CourseID),
		requestid.ContextField(ctx))
	return result, nil
}

// Drop withdraws an enrolled student; the row is kept.
func (s *EnrollmentService) Drop(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	return s.transition(ctx, id, EnrollmentActionDrop, func(e *models.Enrollment) error {
		if e.Status != models.EnrollmentStatusEnrolled {
			return businessRule("only enrolled enrollments can be dropped")
		}
		e.Status = models.EnrollmentStatusDropped
		return nil
	})
}

// Complete closes an enrollment with a final 0-100 grade.
func (s *EnrollmentService) Complete(ctx context.Context, id string, grade float64) (*models.EnrollmentDetail, error) {
	if grade < 0 || grade > 100 {
		return nil, invalidMessage("grade must be between 0 and 100")
	}
	return s.transition(ctx, id, EnrollmentActionComplete, func(e *models.Enrollment) error {
		if e.Status != models.EnrollmentStatusEnrolled {
			return businessRule("only enrolled enrollments can be completed")
		}
		e.ApplyGrade(grade)
		return nil
	})
}

// Update dispatches on action, falling back to a status/grade shortcut and then a notes edit.
func (s *EnrollmentService) Update(ctx context.Context, id string, req UpdateEnrollmentRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "enrollment")
	}

	action := req.Action
	if action == "" && req.Status != nil {
		switch *req.Status {
		case models.EnrollmentStatusCompleted:
			action = EnrollmentActionComplete
		case models.EnrollmentStatusDropped:
			action = EnrollmentActionDrop
		case models.EnrollmentStatusEnrolled:
			// Re-activation goes through enrollment so seat and duplicate checks run.
			return nil, invalidMessage("status enrolled cannot be set on an existing enrollment; create a new enrollment instead")
		}
	}

	switch action {
	case EnrollmentActionDrop:
		return s.Drop(ctx, id)
	case EnrollmentActionComplete:
		if req.Grade == nil {
			return nil, invalidMessage("grade is required to complete an enrollment")
		}
		return s.Complete(ctx, id, *req.Grade)
	}

	return s.transition(ctx, id, "update", func(e *models.Enrollment) error {
		if req.Notes != nil {
			e.Notes = *req.Notes
		}
		return nil
	})
}

// Delete hard-deletes an enrollment that is no longer active.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		current, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if current.Status == models.EnrollmentStatusEnrolled {
			return businessRule("only dropped or completed enrollments can be deleted")
		}
		return s.repo.Delete(ctx, exec, id)
	})
	if err != nil {
		return storeError(err, "enrollment not found", "failed to delete enrollment")
	}
	s.metrics.RecordLifecycle("enrollment", "delete")
	s.logger.Info("enrollment deleted", zap.String("enrollment_id", id))
	return nil
}

func (s *EnrollmentService) transition(ctx context.Context, id, action string, mutate func(*models.Enrollment) error) (*models.EnrollmentDetail, error) {
	var result *models.EnrollmentDetail
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		current, err := s.repo.FindByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if err := mutate(&current.Enrollment); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, exec, &current.Enrollment); err != nil {
			return err
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, storeError(err, "enrollment not found", "failed to update enrollment")
	}
	s.metrics.RecordLifecycle("enrollment", action)
	s.logger.Info("enrollment updated", zap.String("enrollment_id", id), zap.String("action", action), zap.String("status", string(result.Status)), requestid.ContextField(ctx))
	return result, nil
}
