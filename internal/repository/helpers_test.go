package repository

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studentRowColumns = []string{"id", "student_id", "name", "id_card", "gender", "age", "major", "grade", "class_name",
	"email", "phone", "address", "status", "enrollment_date", "created_at", "updated_at"}

var courseRowColumns = []string{"id", "code", "name", "credits", "hours", "teacher", "semester", "classroom", "schedule",
	"description", "prerequisites", "max_students", "status", "created_at", "updated_at", "current_students"}

var bookRowColumns = []string{"id", "isbn", "title", "author", "publisher", "publish_date", "category", "tags", "total_copies",
	"location", "description", "pages", "language", "status", "created_at", "updated_at", "borrowed_copies", "available_copies"}
