package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/pkg/export"
)

// Dataset names accepted by the export and page endpoints.
const (
	DatasetStudents    = "students"
	DatasetCourses     = "courses"
	DatasetBooks       = "books"
	DatasetEnrollments = "enrollments"
	DatasetBorrows     = "borrows"
	DatasetOverdue     = "overdue"
)

const exportChunk = 100

type studentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
}

type courseLister interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error)
}

type bookLister interface {
	List(ctx context.Context, filter models.BookFilter) ([]models.Book, *models.Pagination, error)
}

type enrollmentLister interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error)
}

type borrowLister interface {
	List(ctx context.Context, filter models.BorrowFilter) ([]models.BorrowRecordDetail, *models.Pagination, error)
}

type datasetRenderer interface {
	Render(format export.Format, data export.Dataset, title string) ([]byte, error)
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Students    studentLister
	Courses     courseLister
	Books       bookLister
	Enrollments enrollmentLister
	Borrows     borrowLister
	Renderer    datasetRenderer
	Logger      *zap.Logger
}

// ExportResult is a rendered export ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService turns list results into tabular datasets for files and HTML tables.
type ExportService struct {
	students    studentLister
	courses     courseLister
	books       bookLister
	enrollments enrollmentLister
	borrows     borrowLister
	renderer    datasetRenderer
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := params.Renderer
	if renderer == nil {
		renderer = export.NewRenderer()
	}
	return &ExportService{
		students:    params.Students,
		courses:     params.Courses,
		books:       params.Books,
		enrollments: params.Enrollments,
		borrows:     params.Borrows,
		renderer:    renderer,
		logger:      logger,
		now:         time.Now,
	}
}

// Export renders every row of a dataset in the requested format.
func (s *ExportService) Export(ctx context.Context, dataset, rawFormat, search string) (*ExportResult, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, invalidMessage(err.Error())
	}

	var all export.Dataset
	for page := 1; ; page++ {
		chunk, pagination, err := s.Page(ctx, dataset, search, models.PageRequest{Page: page, PerPage: exportChunk})
		if err != nil {
			return nil, err
		}
		if all.Headers == nil {
			all.Headers = chunk.Headers
		}
		all.Rows = append(all.Rows, chunk.Rows...)
		if !pagination.HasNext {
			break
		}
	}

	payload, err := s.renderer.Render(format, all, datasetTitle(dataset))
	if err != nil {
		return nil, internal(err, "failed to render export")
	}
	s.logger.Info("export rendered", zap.String("dataset", dataset), zap.String("format", string(format)), zap.Int("rows", len(all.Rows)))
	return &ExportResult{
		Filename:    fmt.Sprintf("%s_%s.%s", dataset, s.now().UTC().Format("20060102_150405"), format),
		ContentType: format.ContentType(),
		Payload:     payload,
		Rows:        len(all.Rows),
	}, nil
}

// Page builds one page of a dataset.
func (s *ExportService) Page(ctx context.Context, dataset, search string, page models.PageRequest) (export.Dataset, *models.Pagination, error) {
	switch dataset {
	case DatasetStudents:
		items, p, err := s.students.List(ctx, models.StudentFilter{Search: search, PageRequest: page})
		if err != nil {
			return export.Dataset{}, nil, err
		}
		return studentDataset(items), p, nil
	case DatasetCourses:
		items, p, err := s.courses.List(ctx, models.CourseFilter{Search: search, PageRequest: page})
		if err != nil {
			return export.Dataset{}, nil, err
		}
		return courseDataset(items), p, nil
	case DatasetBooks:
		items, p, err := s.books.List(ctx, models.BookFilter{Search: search, PageRequest: page})
		if err != nil {
			return export.Dataset{}, nil, err
		}
		return bookDataset(items), p, nil
	case DatasetEnrollments:
		items, p, err := s.enrollments.List(ctx, models.EnrollmentFilter{PageRequest: page})
		if err != nil {
			return export.Dataset{}, nil, err
		}
		return enrollmentDataset(items), p, nil
	case DatasetBorrows:
		items, p, err := s.borrows.List(ctx, models.BorrowFilter{PageRequest: page})
		if err != nil {
			return export.Dataset{}, nil, err
		}
		return borrowDataset(items), p, nil
	case DatasetOverdue:
		items, p, err := s.borrows.List(ctx, models.BorrowFilter{OverdueOnly: true, OrderByDue: true, PageRequest: page})
		if err != nil {
			return export.Dataset{}, nil, err
		}
		return borrowDataset(items), p, nil
	default:
		return export.Dataset{}, nil, notFound(fmt.Sprintf("unknown dataset %q", dataset))
	}
}

func datasetTitle(dataset string) string {
	switch dataset {
	case DatasetStudents:
		return "Students"
	case DatasetCourses:
		return "Courses"
	case DatasetBooks:
		return "Books"
	case DatasetEnrollments:
		return "Enrollments"
	case DatasetBorrows:
		return "Borrow Records"
	case DatasetOverdue:
		return "Overdue Loans"
	default:
		return dataset
	}
}

func studentDataset(items []models.Student) export.Dataset {
	data := export.Dataset{Headers: []string{"Student ID", "Name", "Gender", "Age", "Major", "Grade", "Class", "Email", "Phone", "Status", "Enrolled On"}}
	for _, st := range items {
		data.Rows = append(data.Rows, []string{
			st.StudentID, st.Name, st.Gender, strconv.Itoa(st.Age), st.Major, st.Grade, st.ClassName,
			deref(st.Email), st.Phone, string(st.Status), st.EnrollmentDate.Format(dateLayout),
		})
	}
	return data
}

func courseDataset(items []models.Course) export.Dataset {
	data := export.Dataset{Headers: []string{"Code", "Name", "Credits", "Hours", "Teacher", "Semester", "Enrolled", "Capacity", "Status"}}
	for _, c := range items {
		data.Rows = append(data.Rows, []string{
			c.Code, c.Name, strconv.FormatFloat(c.Credits, 'f', -1, 64), strconv.Itoa(c.Hours), c.Teacher, c.Semester,
			strconv.Itoa(c.CurrentStudents), strconv.Itoa(c.MaxStudents), string(c.Status),
		})
	}
	return data
}

func bookDataset(items []models.Book) export.Dataset {
	data := export.Dataset{Headers: []string{"ISBN", "Title", "Author", "Publisher", "Category", "Total", "Available", "Status"}}
	for _, b := range items {
		data.Rows = append(data.Rows, []string{
			b.ISBN, b.Title, b.Author, b.Publisher, b.Category,
			strconv.Itoa(b.TotalCopies), strconv.Itoa(b.AvailableCopies), string(b.Status),
		})
	}
	return data
}

func enrollmentDataset(items []models.EnrollmentDetail) export.Dataset {
	data := export.Dataset{Headers: []string{"Student", "Student ID", "Course", "Code", "Enrolled On", "Status", "Grade", "Letter"}}
	for _, e := range items {
		grade := ""
		if e.Grade != nil {
			grade = strconv.FormatFloat(*e.Grade, 'f', -1, 64)
		}
		data.Rows = append(data.Rows, []string{
			e.StudentName, e.StudentStudentID, e.CourseName, e.CourseCode,
			e.EnrollmentDate.Format(dateLayout), string(e.Status), grade, deref(e.GradeLetter),
		})
	}
	return data
}

func borrowDataset(items []models.BorrowRecordDetail) export.Dataset {
	data := export.Dataset{Headers: []string{"Student", "Student ID", "Book", "ISBN", "Borrowed", "Due", "Returned", "Status", "Days Overdue", "Fine", "Fine Paid"}}
	for _, r := range items {
		returned := ""
		if r.ReturnDate != nil {
			returned = r.ReturnDate.Format(dateLayout)
		}
		data.Rows = append(data.Rows, []string{
			r.StudentName, r.StudentStudentID, r.BookTitle, r.BookISBN,
			r.BorrowDate.Format(dateLayout), r.DueDate.Format(dateLayout), returned, string(r.Status),
			strconv.Itoa(r.DaysOverdue), strconv.FormatFloat(r.FineAmount, 'f', 2, 64), strconv.FormatBool(r.FinePaid),
		})
	}
	return data
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
