package service

import (
	"database/sql"
	"errors"

	"github.com/noah-isme/campus-registrar-api/pkg/database"
	appErrors "github.com/noah-isme/campus-registrar-api/pkg/errors"
)

var uniqueMessages = map[string]string{
	"students_student_id_key":        "student id exists",
	"students_id_card_key":           "ID card exists",
	"students_email_key":             "email exists",
	"courses_code_key":               "course code exists",
	"books_isbn_key":                 "ISBN exists",
	"enrollments_student_course_key": "student already enrolled in course",
}

// storeError maps a repository failure onto the public error taxonomy.
func storeError(err error, notFound, failure string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if missing(err) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	if constraint, ok := database.UniqueViolation(err); ok {
		msg, known := uniqueMessages[constraint]
		if !known {
			msg = appErrors.ErrUnique.Message
		}
		return appErrors.Wrap(err, appErrors.ErrUnique.Code, appErrors.ErrUnique.Status, msg)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, failure)
}

func internal(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func businessRule(message string) error {
	return appErrors.Clone(appErrors.ErrBusinessRule, message)
}

func notFound(message string) error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}

func invalidMessage(message string) error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

// notFoundAs rewrites a missing-row error with a specific message and passes anything else through.
func notFoundAs(err error, message string) error {
	if missing(err) {
		return notFound(message)
	}
	return err
}

// missing treats a malformed key like an absent row: no such id can exist.
func missing(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || database.InvalidText(err)
}
