package entity

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorKindDuplicate  ErrorKind = "duplicate"
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindNotFound   ErrorKind = "not_found"
	ErrorKindConflict   ErrorKind = "conflict"
	ErrorKindForbidden  ErrorKind = "forbidden"
)

var (
	ErrDuplicate  = errors.New("duplicate record")
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("record not found")
	ErrConflict   = errors.New("conflicting state")
	ErrForbidden  = errors.New("forbidden")
)

// DomainError identifies which invariant an operation violated.
type DomainError struct {
	Kind    ErrorKind
	Entity  string
	Field   string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Entity, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Entity, msg)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) Is(target error) bool {
	switch target {
	case ErrDuplicate:
		return e.Kind == ErrorKindDuplicate
	case ErrValidation:
		return e.Kind == ErrorKindValidation
	case ErrNotFound:
		return e.Kind == ErrorKindNotFound
	case ErrConflict:
		return e.Kind == ErrorKindConflict
	case ErrForbidden:
		return e.Kind == ErrorKindForbidden
	}
	return false
}

func NewDuplicateError(entityName, field string, value interface{}) *DomainError {
	return &DomainError{
		Kind:    ErrorKindDuplicate,
		Entity:  entityName,
		Field:   field,
		Message: fmt.Sprintf("%s %q already exists", field, fmt.Sprint(value)),
	}
}

func NewValidationError(entityName, field, message string, err error) *DomainError {
	return &DomainError{
		Kind:    ErrorKindValidation,
		Entity:  entityName,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

func NewNotFoundError(entityName string, id interface{}) *DomainError {
	return &DomainError{
		Kind:    ErrorKindNotFound,
		Entity:  entityName,
		Field:   "id",
		Message: fmt.Sprintf("%s not found", fmt.Sprint(id)),
	}
}

func NewConflictError(entityName, message string) *DomainError {
	return &DomainError{
		Kind:    ErrorKindConflict,
		Entity:  entityName,
		Message: message,
	}
}

func NewForbiddenError(entityName, message string) *DomainError {
	return &DomainError{
		Kind:    ErrorKindForbidden,
		Entity:  entityName,
		Message: message,
	}
}
