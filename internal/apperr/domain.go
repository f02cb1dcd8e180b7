// internal/apperr/domain.go
//
// Domain-local errors and the boundary conversion into *Error.
//
// HashingError and DatabaseError keep crypto and driver error shapes out of
// domain code.  They become an *Error only in `From`, which handlers call
// right before rendering.

package apperr

import (
	"database/sql"
	"errors"
)

// HashingErrorKind distinguishes a wrong password from a broken hash.
type HashingErrorKind int

const (
	PasswordMismatch HashingErrorKind = iota
	HashFailure
)

// HashingError is returned by password hashing and verification.
type HashingError struct {
	Kind HashingErrorKind
	Err  error // set for HashFailure
}

func (e *HashingError) Error() string {
	if e.Kind == PasswordMismatch {
		return "password mismatch"
	}
	if e.Err == nil {
		return "argon2 error"
	}
	return "argon2 error: " + e.Err.Error()
}

func (e *HashingError) Unwrap() error { return e.Err }

// DatabaseErrorKind distinguishes a missing row from any other failure.
type DatabaseErrorKind int

const (
	RowNotFound DatabaseErrorKind = iota
	StorageFailure
)

// DatabaseError is returned by the storage layer.
type DatabaseError struct {
	Kind DatabaseErrorKind
	Err  error
}

// NewDatabaseError wraps a driver error, folding sql.ErrNoRows into
// RowNotFound.  A nil input yields nil.
func NewDatabaseError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &DatabaseError{Kind: RowNotFound, Err: err}
	}
	return &DatabaseError{Kind: StorageFailure, Err: err}
}

func (e *DatabaseError) Error() string {
	if e.Kind == RowNotFound {
		return "row not found"
	}
	if e.Err == nil {
		return "storage failure"
	}
	return e.Err.Error()
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// From converts any error into the taxonomy.  An *Error anywhere in the chain
// is returned as-is so classification happens exactly once.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var hashErr *HashingError
	if errors.As(err, &hashErr) {
		if hashErr.Kind == PasswordMismatch {
			return Unauthorized("Invalid credentials")
		}
		return InternalServerError("hashing error: " + hashErr.Error())
	}

	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		if dbErr.Kind == RowNotFound {
			return NotFound("Resource not found")
		}
		if dbErr.Err == nil {
			return InternalServerError("DB error: storage failure")
		}
		return FromStorageError(dbErr.Err)
	}

	return InternalServerError(err.Error())
}
