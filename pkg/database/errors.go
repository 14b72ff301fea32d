package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

// UniqueViolation returns the violated constraint name when err is a unique_violation
// raised through either lib/pq or pgx.
func UniqueViolation(err error) (string, bool) {
	return constraintFor(err, codeUniqueViolation)
}

// ForeignKeyViolation returns the violated constraint name for foreign_key_violation errors.
func ForeignKeyViolation(err error) (string, bool) {
	return constraintFor(err, codeForeignKeyViolation)
}

// InvalidText reports invalid_text_representation, e.g. a malformed UUID literal.
func InvalidText(err error) bool {
	return sqlState(err) == codeInvalidText
}

func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func constraintFor(err error, code string) (string, bool) {
	if err == nil {
		return "", false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == code {
		return pqErr.Constraint, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}

	return "", false
}
