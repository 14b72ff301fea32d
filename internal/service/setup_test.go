package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/pkg/config"
)

type registrar struct {
	store       *memStore
	tx          *fakeTx
	recorder    *fakeRecorder
	now         time.Time
	students    *StudentService
	courses     *CourseService
	books       *BookService
	enrollments *EnrollmentService
	borrows     *BorrowService
}

func newRegistrar(t *testing.T) *registrar {
	t.Helper()
	store := newMemStore()
	tx := &fakeTx{}
	rec := &fakeRecorder{}
	validate := NewValidator()
	paging := config.PagingConfig{DefaultPerPage: 10, MaxPerPage: 100}

	courseRepo := &memCourses{memStore: store}
	bookRepo := &memBooks{memStore: store}
	r := &registrar{
		store:    store,
		tx:       tx,
		recorder: rec,
		now:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	r.students = NewStudentService(memStudents{store}, tx, validate, nil, paging)
	r.courses = NewCourseService(courseRepo, tx, validate, nil, paging)
	r.books = NewBookService(bookRepo, tx, validate, nil, paging)
	r.enrollments = NewEnrollmentService(memEnrollments{store}, memStudents{store}, courseRepo, tx, validate, nil, paging).WithMetrics(rec)
	r.borrows = NewBorrowService(memBorrows{store}, memStudents{store}, bookRepo, tx, validate, nil, paging, DefaultLibraryRules).WithMetrics(rec)
	r.borrows.now = func() time.Time { return r.now }
	return r
}

func (r *registrar) student(t *testing.T, studentID, idCard string) *models.Student {
	t.Helper()
	s, err := r.students.Create(context.Background(), CreateStudentRequest{
		StudentID: studentID, Name: "张三", IDCard: idCard, Gender: "male", Age: intPtr(20), Major: "CS", Grade: "2023",
	})
	require.NoError(t, err)
	return s
}

func (r *registrar) course(t *testing.T, code string, max int) *models.Course {
	t.Helper()
	c, err := r.courses.Create(context.Background(), CreateCourseRequest{
		Code: code, Name: "Course " + code, Credits: floatPtr(3), Teacher: "Pike", Semester: "2024-1", MaxStudents: intPtr(max),
	})
	require.NoError(t, err)
	return c
}

func (r *registrar) book(t *testing.T, isbn string, copies int) *models.Book {
	t.Helper()
	b, err := r.books.Create(context.Background(), CreateBookRequest{
		ISBN: isbn, Title: "Book " + isbn, Author: "Kernighan", Publisher: "AW", TotalCopies: intPtr(copies),
	})
	require.NoError(t, err)
	return b
}
