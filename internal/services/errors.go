package services

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Sentinel errors, one per error kind. Every structured error below
// unwraps to exactly one of them so callers can branch with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrTransport  = errors.New("storage unavailable")
)

// ValidationError reports a missing field, a bad enum value or a broken
// business rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return "conflict: " + e.Reason }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// TransportError wraps a storage failure. It unwraps to both ErrTransport
// and the driver error.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: storage error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// storageErr classifies an error coming back from gorm. Errors that are
// already classified pass through untouched.
func storageErr(op, kind, id string, err error) error {
	if err == nil {
		return nil
	}
	if IsClientError(err) || IsNotFound(err) || errors.Is(err, ErrTransport) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(kind, id)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConflictError{Reason: op + ": duplicate " + kind}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &ConflictError{Reason: op + ": duplicate " + kind}
	}
	return &TransportError{Op: op, Err: err}
}

// IsClientError returns true when the caller sent something the engine
// refuses: bad input or a uniqueness conflict.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
