package repository

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Kode SQLSTATE Postgres.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)
