package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-registrar-api/internal/dto"
)

type dashboardRepository interface {
	Overview(ctx context.Context, now time.Time) (dto.DashboardOverview, error)
	ThisWeek(ctx context.Context, since time.Time) (dto.DashboardThisWeek, error)
	StudentsByMajor(ctx context.Context) ([]dto.MajorCount, error)
	StudentsByGrade(ctx context.Context) ([]dto.GradeCount, error)
	PopularCourses(ctx context.Context, limit int) ([]dto.PopularCourse, error)
	PopularBooks(ctx context.Context, limit int) ([]dto.PopularBook, error)
	RecentEnrollments(ctx context.Context, limit int) ([]dto.RecentEnrollment, error)
	RecentBorrows(ctx context.Context, limit int) ([]dto.RecentBorrow, error)
}

// DashboardServiceConfig tunes dashboard list sizes.
type DashboardServiceConfig struct {
	PopularLimit int
	RecentLimit  int
	WeekWindow   time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Repo   dashboardRepository
	Logger *zap.Logger
	Config DashboardServiceConfig
}

// DashboardService composes the registrar dashboard on every call.
type DashboardService struct {
	repo   dashboardRepository
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.PopularLimit <= 0 {
		cfg.PopularLimit = 5
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 10
	}
	if cfg.WeekWindow <= 0 {
		cfg.WeekWindow = 7 * 24 * time.Hour
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: params.Repo, logger: logger, now: time.Now, cfg: cfg}
}

// Summary returns the dashboard payload as of now.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, error) {
	now := s.now().UTC()

	overview, err := s.repo.Overview(ctx, now)
	if err != nil {
		return nil, internal(err, "failed to load dashboard overview")
	}
	overview.AvailableCopies = overview.TotalBookCopies - overview.BorrowedBooks
	if overview.AvailableCopies < 0 {
		overview.AvailableCopies = 0
	}

	week, err := s.repo.ThisWeek(ctx, now.Add(-s.cfg.WeekWindow))
	if err != nil {
		return nil, internal(err, "failed to load weekly activity")
	}

	majors, err := s.repo.StudentsByMajor(ctx)
	if err != nil {
		return nil, internal(err, "failed to load major distribution")
	}
	grades, err := s.repo.StudentsByGrade(ctx)
	if err != nil {
		return nil, internal(err, "failed to load grade distribution")
	}

	courses, err := s.repo.PopularCourses(ctx, s.cfg.PopularLimit)
	if err != nil {
		return nil, internal(err, "failed to load popular courses")
	}
	books, err := s.repo.PopularBooks(ctx, s.cfg.PopularLimit)
	if err != nil {
		return nil, internal(err, "failed to load popular books")
	}

	enrollments, err := s.repo.RecentEnrollments(ctx, s.cfg.RecentLimit)
	if err != nil {
		return nil, internal(err, "failed to load recent enrollments")
	}
	borrows, err := s.repo.RecentBorrows(ctx, s.cfg.RecentLimit)
	if err != nil {
		return nil, internal(err, "failed to load recent borrows")
	}

	return &dto.DashboardResponse{
		Overview:         overview,
		ThisWeek:         week,
		Distributions:    dto.Distributions{Majors: nonNil(majors), Grades: nonNil(grades)},
		Popular:          dto.PopularSection{Courses: nonNil(courses), Books: nonNil(books)},
		RecentActivities: dto.RecentActivities{Enrollments: nonNil(enrollments), Borrows: nonNil(borrows)},
		GeneratedAt:      now,
	}, nil
}

// nonNil keeps empty collections rendering as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
