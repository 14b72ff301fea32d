package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	appErrors "github.com/noah-isme/campus-registrar-api/pkg/errors"
)

func newExportFixture(t *testing.T) (*registrar, *ExportService) {
	t.Helper()
	r := newRegistrar(t)
	svc := NewExportService(ExportServiceParams{
		Students:    r.students,
		Courses:     r.courses,
		Books:       r.books,
		Enrollments: r.enrollments,
		Borrows:     r.borrows,
	})
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC) }
	return r, svc
}

func TestExportStudentsCSV(t *testing.T) {
	r, svc := newExportFixture(t)
	r.student(t, "ZS001", "110101199001011234")
	r.student(t, "ZS002", "110101199001011235")

	result, err := svc.Export(context.Background(), DatasetStudents, "", "")
	require.NoError(t, err)
	assert.Equal(t, "students_20240301_103000.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)
	assert.Equal(t, 2, result.Rows)

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(result.Payload, []byte("\xef\xbb\xbf")))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Student ID", records[0][0])
	assert.Equal(t, "ZS001", records[1][0])
}

func TestExportOverdueXLSXAndPDF(t *testing.T) {
	r, svc := newExportFixture(t)
	s := r.student(t, "ZS001", "110101199001011234")
	book := r.book(t, "9787111123456", 1)
	_, err := r.borrows.Borrow(context.Background(), BorrowRequest{StudentID: s.ID, BookID: book.ID})
	require.NoError(t, err)

	xlsx, err := svc.Export(context.Background(), DatasetBorrows, "xlsx", "")
	require.NoError(t, err)
	assert.Equal(t, 1, xlsx.Rows)
	assert.True(t, bytes.HasPrefix(xlsx.Payload, []byte("PK")))

	pdf, err := svc.Export(context.Background(), DatasetBorrows, "PDF", "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Payload, []byte("%PDF")))
}

func TestExportRejectsUnknownInput(t *testing.T) {
	_, svc := newExportFixture(t)

	_, err := svc.Export(context.Background(), DatasetStudents, "docx", "")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Export(context.Background(), "teachers", "csv", "")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestPageBuildsDatasets(t *testing.T) {
	r, svc := newExportFixture(t)
	s := r.student(t, "ZS001", "110101199001011234")
	c := r.course(t, "CS101", 10)
	e, err := r.enrollments.Enroll(context.Background(), EnrollRequest{StudentID: s.ID, CourseID: c.ID})
	require.NoError(t, err)
	_, err = r.enrollments.Complete(context.Background(), e.ID, 91.5)
	require.NoError(t, err)

	data, page, err := svc.Page(context.Background(), DatasetEnrollments, "", models.PageRequest{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, []string{"张三", "ZS001", "Course CS101", "CS101"}, data.Rows[0][:4])
	assert.Equal(t, "91.5", data.Rows[0][6])
	assert.Equal(t, "A", data.Rows[0][7])

	courses, _, err := svc.Page(context.Background(), DatasetCourses, "", models.PageRequest{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, "0", courses.Rows[0][6])
}
