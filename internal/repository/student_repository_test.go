package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-registrar-api/internal/models"
)

func TestStudentRepositoryListSearch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("s-1", "ZS001", "张三", "110101199001011234", "male", 20, "CS", "2023", "A1", nil, "", "", "active", now, now, now)
	mock.ExpectQuery(`SELECT s\.id, s\.student_id, .+ FROM students s WHERE \(\(s\.student_id LIKE \$1 OR s\.name LIKE \$2 OR s\.major LIKE \$3 OR s\.grade LIKE \$4\)\) ORDER BY s\.created_at ASC, s\.id ASC LIMIT 10 OFFSET 10`).
		WithArgs("%ZS%", "%ZS%", "%ZS%", "%ZS%").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students s WHERE`).
		WithArgs("%ZS%", "%ZS%", "%ZS%", "%ZS%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	students, total, err := repo.List(context.Background(), models.StudentFilter{
		Search:      "ZS",
		PageRequest: models.PageRequest{Page: 2, PerPage: 10},
	})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "张三", students[0].Name)
	assert.Nil(t, students[0].Email)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{StudentID: "ZS001", Name: "张三", IDCard: "110101199001011234", Gender: "male", Age: 20, Major: "CS", Grade: "2023"}
	require.NoError(t, repo.Create(context.Background(), nil, student))

	assert.NotEmpty(t, student.ID)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.False(t, student.EnrollmentDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(`DELETE FROM students WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), nil, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUsesTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE students SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, repo.Update(context.Background(), tx, &models.Student{ID: "s-1", Name: "李四"}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryBorrowedBooks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(`FROM books b JOIN borrow_records br ON br\.book_id = b\.id WHERE br\.status IN \(\$1,\$2\) AND br\.student_id = \$3`).
		WithArgs("borrowed", "overdue", "s-1").
		WillReturnRows(sqlmock.NewRows(bookRowColumns).
			AddRow("b-1", "9787111111111", "Go", "Pike", "Pub", nil, "tech", "", 2, "", "", 300, "中文", "available", now, now, 1, 1))

	books, err := repo.BorrowedBooks(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 1, books[0].AvailableCopies)
	assert.NoError(t, mock.ExpectationsWereMet())
}
