package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-registrar-api/internal/models"
	"github.com/noah-isme/campus-registrar-api/pkg/database"
)

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(_ context.Context, fn database.TxFunc) error {
	f.calls++
	return fn(nil)
}

// absent mirrors Postgres: a malformed UUID literal fails with 22P02 instead of matching nothing.
func absent(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &pq.Error{Code: "22P02", Message: "invalid input syntax for type uuid"}
	}
	return sql.ErrNoRows
}

func uniqueErr(constraint string) error {
	return &pq.Error{Code: "23505", Constraint: constraint, Message: "duplicate key value violates unique constraint"}
}

// memStore is an in-memory registrar that derives seat and copy counts the way the SQL does.
type memStore struct {
	students    map[string]models.Student
	courses     map[string]models.Course
	books       map[string]models.Book
	enrollments map[string]models.Enrollment
	borrows     map[string]models.BorrowRecord
}

func newMemStore() *memStore {
	return &memStore{
		students:    map[string]models.Student{},
		courses:     map[string]models.Course{},
		books:       map[string]models.Book{},
		enrollments: map[string]models.Enrollment{},
		borrows:     map[string]models.BorrowRecord{},
	}
}

func (m *memStore) nextID() string {
	return uuid.NewString()
}

func (m *memStore) enrolledIn(courseID string) int {
	n := 0
	for _, e := range m.enrollments {
		if e.CourseID == courseID && e.Status == models.EnrollmentStatusEnrolled {
			n++
		}
	}
	return n
}

func (m *memStore) loaned(bookID string) int {
	n := 0
	for _, b := range m.borrows {
		if b.BookID == bookID && b.Status.IsActive() {
			n++
		}
	}
	return n
}

type memStudents struct{ *memStore }

func (r memStudents) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range r.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r memStudents) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, absent(id)
	}
	return &s, nil
}

func (r memStudents) EnrolledCourses(_ context.Context, studentID string) ([]models.Course, error) {
	var out []models.Course
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.Status == models.EnrollmentStatusEnrolled {
			out = append(out, r.courses[e.CourseID])
		}
	}
	return out, nil
}

func (r memStudents) BorrowedBooks(_ context.Context, studentID string) ([]models.Book, error) {
	var out []models.Book
	for _, b := range r.borrows {
		if b.StudentID == studentID && b.Status.IsActive() {
			out = append(out, r.books[b.BookID])
		}
	}
	return out, nil
}

func (r memStudents) checkUnique(s *models.Student) error {
	for _, other := range r.students {
		if other.ID == s.ID {
			continue
		}
		switch {
		case other.StudentID == s.StudentID:
			return uniqueErr("students_student_id_key")
		case other.IDCard == s.IDCard:
			return uniqueErr("students_id_card_key")
		case other.Email != nil && s.Email != nil && *other.Email == *s.Email:
			return uniqueErr("students_email_key")
		}
	}
	return nil
}

func (r memStudents) Create(_ context.Context, _ sqlx.ExtContext, s *models.Student) error {
	if s.ID == "" {
		s.ID = r.nextID()
	}
	if s.Status == "" {
		s.Status = models.StudentStatusActive
	}
	if err := r.checkUnique(s); err != nil {
		return err
	}
	r.students[s.ID] = *s
	return nil
}

func (r memStudents) Update(_ context.Context, _ sqlx.ExtContext, s *models.Student) error {
	if _, ok := r.students[s.ID]; !ok {
		return sql.ErrNoRows
	}
	if err := r.checkUnique(s); err != nil {
		return err
	}
	r.students[s.ID] = *s
	return nil
}

func (r memStudents) Delete(_ context.Context, _ sqlx.ExtContext, id string) error {
	if _, ok := r.students[id]; !ok {
		return absent(id)
	}
	delete(r.students, id)
	for eid, e := range r.enrollments {
		if e.StudentID == id {
			delete(r.enrollments, eid)
		}
	}
	for bid, b := range r.borrows {
		if b.StudentID == id {
			delete(r.borrows, bid)
		}
	}
	return nil
}

type memCourses struct {
	*memStore
	locks int
}

func (r *memCourses) List(_ context.Context, _ models.CourseFilter) ([]models.Course, int, error) {
	var out []models.Course
	for id := range r.courses {
		c, _ := r.FindByID(context.Background(), nil, id)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *memCourses) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, absent(id)
	}
	c.CurrentStudents = r.enrolledIn(id)
	return &c, nil
}

func (r *memCourses) LockByID(_ context.Context, _ sqlx.ExtContext, id string) error {
	if _, ok := r.courses[id]; !ok {
		return absent(id)
	}
	r.locks++
	return nil
}

func (r *memCourses) Create(_ context.Context, _ sqlx.ExtContext, c *models.Course) error {
	for _, other := range r.courses {
		if other.Code == c.Code {
			return uniqueErr("courses_code_key")
		}
	}
	if c.ID == "" {
		c.ID = r.nextID()
	}
	if c.MaxStudents == 0 {
		c.MaxStudents = models.DefaultMaxStudents
	}
	if c.Status == "" {
		c.Status = models.CourseStatusActive
	}
	r.courses[c.ID] = *c
	return nil
}

func (r *memCourses) Update(_ context.Context, _ sqlx.ExtContext, c *models.Course) error {
	if _, ok := r.courses[c.ID]; !ok {
		return sql.ErrNoRows
	}
	r.courses[c.ID] = *c
	return nil
}

func (r *memCourses) Delete(_ context.Context, _ sqlx.ExtContext, id string) error {
	if _, ok := r.courses[id]; !ok {
		return absent(id)
	}
	delete(r.courses, id)
	for eid, e := range r.enrollments {
		if e.CourseID == id {
			delete(r.enrollments, eid)
		}
	}
	return nil
}

type memBooks struct {
	*memStore
	locks int
}

func (r *memBooks) List(_ context.Context, _ models.BookFilter) ([]models.Book, int, error) {
	var out []models.Book
	for id := range r.books {
		b, _ := r.FindByID(context.Background(), nil, id)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *memBooks) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, absent(id)
	}
	b.BorrowedCopies = r.loaned(id)
	b.AvailableCopies = b.TotalCopies - b.BorrowedCopies
	return &b, nil
}

func (r *memBooks) LockByID(_ context.Context, _ sqlx.ExtContext, id string) error {
	if _, ok := r.books[id]; !ok {
		return absent(id)
	}
	r.locks++
	return nil
}

func (r *memBooks) Create(_ context.Context, _ sqlx.ExtContext, b *models.Book) error {
	for _, other := range r.books {
		if other.ISBN == b.ISBN {
			return uniqueErr("books_isbn_key")
		}
	}
	if b.ID == "" {
		b.ID = r.nextID()
	}
	if b.TotalCopies == 0 {
		b.TotalCopies = 1
	}
	if b.Status == "" {
		b.Status = models.BookStatusAvailable
	}
	if b.Language == "" {
		b.Language = models.DefaultBookLanguage
	}
	b.AvailableCopies = b.TotalCopies
	r.books[b.ID] = *b
	return nil
}

func (r *memBooks) Update(_ context.Context, _ sqlx.ExtContext, b *models.Book) error {
	if _, ok := r.books[b.ID]; !ok {
		return sql.ErrNoRows
	}
	r.books[b.ID] = *b
	return nil
}

func (r *memBooks) Delete(_ context.Context, _ sqlx.ExtContext, id string) error {
	if _, ok := r.books[id]; !ok {
		return absent(id)
	}
	delete(r.books, id)
	return nil
}

type memEnrollments struct{ *memStore }

func (r memEnrollments) detail(e models.Enrollment) models.EnrollmentDetail {
	return models.EnrollmentDetail{
		Enrollment:       e,
		StudentName:      r.students[e.StudentID].Name,
		StudentStudentID: r.students[e.StudentID].StudentID,
		CourseName:       r.courses[e.CourseID].Name,
		CourseCode:       r.courses[e.CourseID].Code,
	}
}

func (r memEnrollments) List(_ context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var out []models.EnrollmentDetail
	for _, e := range r.enrollments {
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && e.CourseID != filter.CourseID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, r.detail(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r memEnrollments) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.EnrollmentDetail, error) {
	e, ok := r.enrollments[id]
	if !ok {
		return nil, absent(id)
	}
	d := r.detail(e)
	return &d, nil
}

func (r memEnrollments) FindByPair(_ context.Context, _ sqlx.ExtContext, studentID, courseID string) (*models.Enrollment, error) {
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return &e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memEnrollments) Create(_ context.Context, _ sqlx.ExtContext, e *models.Enrollment) error {
	for _, other := range r.enrollments {
		if other.StudentID == e.StudentID && other.CourseID == e.CourseID {
			return uniqueErr("enrollments_student_course_key")
		}
	}
	if e.ID == "" {
		e.ID = r.nextID()
	}
	if e.Status == "" {
		e.Status = models.EnrollmentStatusEnrolled
	}
	r.enrollments[e.ID] = *e
	return nil
}

func (r memEnrollments) Update(_ context.Context, _ sqlx.ExtContext, e *models.Enrollment) error {
	if _, ok := r.enrollments[e.ID]; !ok {
		return sql.ErrNoRows
	}
	r.enrollments[e.ID] = *e
	return nil
}

func (r memEnrollments) Delete(_ context.Context, _ sqlx.ExtContext, id string) error {
	if _, ok := r.enrollments[id]; !ok {
		return absent(id)
	}
	delete(r.enrollments, id)
	return nil
}

type memBorrows struct{ *memStore }

func (r memBorrows) detail(b models.BorrowRecord) models.BorrowRecordDetail {
	return models.BorrowRecordDetail{
		BorrowRecord:     b,
		StudentName:      r.students[b.StudentID].Name,
		StudentStudentID: r.students[b.StudentID].StudentID,
		BookTitle:        r.books[b.BookID].Title,
		BookISBN:         r.books[b.BookID].ISBN,
	}
}

func (r memBorrows) List(_ context.Context, filter models.BorrowFilter) ([]models.BorrowRecordDetail, int, error) {
	var out []models.BorrowRecordDetail
	for _, b := range r.borrows {
		if filter.StudentID != "" && b.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, r.detail(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r memBorrows) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.BorrowRecordDetail, error) {
	b, ok := r.borrows[id]
	if !ok {
		return nil, absent(id)
	}
	d := r.detail(b)
	return &d, nil
}

func (r memBorrows) CountActiveByStudent(_ context.Context, _ sqlx.ExtContext, studentID string) (int, error) {
	n := 0
	for _, b := range r.borrows {
		if b.StudentID == studentID && b.Status.IsActive() {
			n++
		}
	}
	return n, nil
}

func (r memBorrows) HasActive(_ context.Context, _ sqlx.ExtContext, studentID, bookID string) (bool, error) {
	for _, b := range r.borrows {
		if b.StudentID == studentID && b.BookID == bookID && b.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r memBorrows) Create(_ context.Context, _ sqlx.ExtContext, b *models.BorrowRecord) error {
	if b.ID == "" {
		b.ID = r.nextID()
	}
	r.borrows[b.ID] = *b
	return nil
}

func (r memBorrows) Update(_ context.Context, _ sqlx.ExtContext, b *models.BorrowRecord) error {
	if _, ok := r.borrows[b.ID]; !ok {
		return sql.ErrNoRows
	}
	r.borrows[b.ID] = *b
	return nil
}

func (r memBorrows) Delete(_ context.Context, _ sqlx.ExtContext, id string) error {
	if _, ok := r.borrows[id]; !ok {
		return absent(id)
	}
	delete(r.borrows, id)
	return nil
}

func (r memBorrows) MarkOverdue(_ context.Context, _ sqlx.ExtContext, asOf time.Time) (int64, error) {
	var n int64
	for id, b := range r.borrows {
		if b.Status == models.BorrowStatusBorrowed && b.DueDate.Before(asOf) {
			b.Status = models.BorrowStatusOverdue
			r.borrows[id] = b
			n++
		}
	}
	return n, nil
}

type recordedEvent struct{ entity, action string }

type fakeRecorder struct {
	events  []recordedEvent
	flipped int64
}

func (f *fakeRecorder) RecordLifecycle(entity, action string) {
	f.events = append(f.events, recordedEvent{entity, action})
}

func (f *fakeRecorder) RecordOverdueFlipped(n int64) { f.flipped += n }

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
