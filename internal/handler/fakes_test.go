package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-registrar-api/internal/dto"
	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/internal/service"
	"github.com/noah-isme/campus-registrar-api/internal/web"
	"github.com/noah-isme/campus-registrar-api/pkg/config"
	appErrors "github.com/noah-isme/campus-registrar-api/pkg/errors"
	"github.com/noah-isme/campus-registrar-api/pkg/export"
)

const (
	studentUUID    = "0b9c6f5e-3a1d-4f27-9e8b-5c4d3a2b1f01"
	courseUUID     = "0b9c6f5e-3a1d-4f27-9e8b-5c4d3a2b1f02"
	bookUUID       = "0b9c6f5e-3a1d-4f27-9e8b-5c4d3a2b1f03"
	enrollmentUUID = "0b9c6f5e-3a1d-4f27-9e8b-5c4d3a2b1f04"
	borrowUUID     = "0b9c6f5e-3a1d-4f27-9e8b-5c4d3a2b1f05"
)

type responseEnvelope struct {
	Success   bool                   `json:"success"`
	Data      map[string]interface{} `json:"data"`
	Message   string                 `json:"message"`
	ErrorType string                 `json:"error_type"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func do(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type fakeStudents struct {
	lastFilter models.StudentFilter
	created    service.CreateStudentRequest
	createErr  error
	deleted    string
}

func (f *fakeStudents) List(_ context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	f.lastFilter = filter
	p := models.NewPagination(1, 10, 1)
	return []models.Student{{ID: studentUUID, StudentID: "ZS001", Name: "张三"}}, &p, nil
}

func (f *fakeStudents) Get(_ context.Context, id string) (*models.StudentDetail, error) {
	if id != studentUUID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &models.StudentDetail{Student: models.Student{ID: studentUUID, Name: "张三"}, EnrolledCourses: []models.Course{}, BorrowedBooks: []models.Book{}}, nil
}

func (f *fakeStudents) Create(_ context.Context, req service.CreateStudentRequest) (*models.Student, error) {
	f.created = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Student{ID: "s2", StudentID: req.StudentID, Name: req.Name}, nil
}

func (f *fakeStudents) Update(_ context.Context, id string, req service.UpdateStudentRequest) (*models.Student, error) {
	return &models.Student{ID: id, Name: *req.Name}, nil
}

func (f *fakeStudents) Delete(_ context.Context, id string) error {
	f.deleted = id
	return nil
}

type fakeCourses struct{}

func (fakeCourses) List(context.Context, models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	p := models.NewPagination(1, 10, 0)
	return nil, &p, nil
}
func (fakeCourses) Get(context.Context, string) (*models.Course, error) { return &models.Course{}, nil }
func (fakeCourses) Create(context.Context, service.CreateCourseRequest) (*models.Course, error) {
	return &models.Course{}, nil
}
func (fakeCourses) Update(context.Context, string, service.UpdateCourseRequest) (*models.Course, error) {
	return &models.Course{}, nil
}
func (fakeCourses) Delete(context.Context, string) error {
	return appErrors.Clone(appErrors.ErrBusinessRule, "course has enrolled students")
}

type fakeBooks struct{}

func (fakeBooks) List(_ context.Context, filter models.BookFilter) ([]models.Book, *models.Pagination, error) {
	p := models.NewPagination(1, 10, 0)
	if !filter.AvailableOnly {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "expected available_only")
	}
	return []models.Book{}, &p, nil
}
func (fakeBooks) Get(context.Context, string) (*models.Book, error) { return &models.Book{}, nil }
func (fakeBooks) Create(context.Context, service.CreateBookRequest) (*models.Book, error) {
	return &models.Book{}, nil
}
func (fakeBooks) Update(context.Context, string, service.UpdateBookRequest) (*models.Book, error) {
	return &models.Book{}, nil
}
func (fakeBooks) Delete(context.Context, string) error { return nil }

type fakeEnrollments struct {
	dropped string
	purged  string
	update  service.UpdateEnrollmentRequest
}

func (f *fakeEnrollments) List(context.Context, models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	p := models.NewPagination(1, 10, 0)
	return []models.EnrollmentDetail{}, &p, nil
}
func (f *fakeEnrollments) Get(_ context.Context, id string) (*models.EnrollmentDetail, error) {
	return &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: id}}, nil
}
func (f *fakeEnrollments) Enroll(_ context.Context, req service.EnrollRequest) (*models.EnrollmentDetail, error) {
	if req.CourseID == "full" {
		return nil, appErrors.Clone(appErrors.ErrBusinessRule, "course full or closed")
	}
	return &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: enrollmentUUID, Status: models.EnrollmentStatusEnrolled}}, nil
}
func (f *fakeEnrollments) Drop(_ context.Context, id string) (*models.EnrollmentDetail, error) {
	f.dropped = id
	return &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: id, Status: models.EnrollmentStatusDropped}}, nil
}
func (f *fakeEnrollments) Update(_ context.Context, id string, req service.UpdateEnrollmentRequest) (*models.EnrollmentDetail, error) {
	f.update = req
	return &models.EnrollmentDetail{Enrollment: models.Enrollment{ID: id}}, nil
}
func (f *fakeEnrollments) Delete(_ context.Context, id string) error {
	f.purged = id
	return nil
}

type fakeBorrows struct {
	filter  models.BorrowFilter
	overdue bool
	update  service.UpdateBorrowRequest
	swept   bool
}

func (f *fakeBorrows) List(_ context.Context, filter models.BorrowFilter) ([]models.BorrowRecordDetail, *models.Pagination, error) {
	f.filter = filter
	p := models.NewPagination(1, 10, 0)
	return []models.BorrowRecordDetail{}, &p, nil
}
func (f *fakeBorrows) ListOverdue(_ context.Context, page models.PageRequest) ([]models.BorrowRecordDetail, *models.Pagination, error) {
	f.overdue = true
	p := models.NewPagination(page.Page, page.PerPage, 0)
	return []models.BorrowRecordDetail{}, &p, nil
}
func (f *fakeBorrows) Get(_ context.Context, id string) (*models.BorrowRecordDetail, error) {
	return &models.BorrowRecordDetail{BorrowRecord: models.BorrowRecord{ID: id}}, nil
}
func (f *fakeBorrows) Borrow(_ context.Context, req service.BorrowRequest) (*models.BorrowRecordDetail, error) {
	if req.BookID == "gone" {
		return nil, appErrors.Clone(appErrors.ErrBusinessRule, "book unavailable")
	}
	return &models.BorrowRecordDetail{BorrowRecord: models.BorrowRecord{ID: borrowUUID, Status: models.BorrowStatusBorrowed}}, nil
}
func (f *fakeBorrows) Update(_ context.Context, id string, req service.UpdateBorrowRequest) (*models.BorrowRecordDetail, error) {
	f.update = req
	return &models.BorrowRecordDetail{BorrowRecord: models.BorrowRecord{ID: id, Status: models.BorrowStatusReturned, FineAmount: 3}}, nil
}
func (f *fakeBorrows) Delete(context.Context, string) error {
	return appErrors.Clone(appErrors.ErrBusinessRule, "only returned or lost records can be deleted")
}
func (f *fakeBorrows) UpdateOverdueStatus(context.Context) (int64, error) {
	f.swept = true
	return 2, nil
}

type fakeDashboard struct{ err error }

func (f fakeDashboard) Summary(context.Context) (*dto.DashboardResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.DashboardResponse{
		Overview:    dto.DashboardOverview{TotalStudents: 4, TotalBookCopies: 10, AvailableCopies: 7, BorrowedBooks: 3},
		Popular:     dto.PopularSection{Courses: []dto.PopularCourse{{Code: "CS101", Name: "Intro", EnrollmentCount: 3}}},
		GeneratedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}, nil
}

type fakeExports struct{}

func (fakeExports) Export(_ context.Context, dataset, format, _ string) (*service.ExportResult, error) {
	if dataset != service.DatasetStudents {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown dataset")
	}
	return &service.ExportResult{Filename: "students_20240301_090000.csv", ContentType: "text/csv; charset=utf-8", Payload: []byte("Student ID\nZS001\n"), Rows: 1}, nil
}

func (fakeExports) Page(_ context.Context, dataset, search string, page models.PageRequest) (export.Dataset, *models.Pagination, error) {
	if dataset == service.DatasetOverdue {
		return export.Dataset{}, nil, appErrors.Clone(appErrors.ErrInternal, "")
	}
	p := models.NewPagination(page.Page, 10, 11)
	return export.Dataset{Headers: []string{"Student ID", "Name"}, Rows: [][]string{{"ZS001", search + "<b>"}}}, &p, nil
}

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "pw" {
		return nil, appErrors.ErrInvalidLogin
	}
	return &models.LoginResponse{AccessToken: "good", TokenType: "Bearer"}, nil
}

func (fakeAuth) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{Email: "admin@campus.local"}, nil
}

type testApp struct {
	router      *gin.Engine
	students    *fakeStudents
	enrollments *fakeEnrollments
	borrows     *fakeBorrows
}

func newTestApp(t *testing.T, authEnabled bool) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tmpl, err := web.Templates()
	require.NoError(t, err)

	app := &testApp{students: &fakeStudents{}, enrollments: &fakeEnrollments{}, borrows: &fakeBorrows{}}
	cfg := &config.Config{Env: "test", APIPrefix: "/api/v1", Auth: config.AuthConfig{Enabled: authEnabled}}
	app.router = NewRouter(RouterParams{
		Config:      cfg,
		Templates:   tmpl,
		Auth:        fakeAuth{},
		Students:    NewStudentHandler(app.students),
		Courses:     NewCourseHandler(fakeCourses{}),
		Books:       NewBookHandler(fakeBooks{}),
		Enrollments: NewEnrollmentHandler(app.enrollments),
		Borrows:     NewBorrowHandler(app.borrows),
		Dashboard:   NewDashboardHandler(fakeDashboard{}),
		Exports:     NewExportHandler(fakeExports{}),
		Login:       NewAuthHandler(fakeAuth{}),
		Metrics:     NewMetricsHandler(nil, nil),
		Pages:       NewPageHandler(fakeExports{}, fakeDashboard{}, cfg.APIPrefix),
	})
	return app
}
