package errs

import (
	"fmt"
	"strings"
)

// FieldError represents a field-level validation error.
//
//	{ "field": "full_name", "error": "must not exceed 255 characters" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// NotFoundError reports that a mutation addressed a row that does not exist.
//
// Plain lookups never return it; they report absence with a boolean.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	if e.Key == nil {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

// Is matches any *NotFoundError regardless of fields.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ReferentialError reports an insert or update that referenced a missing row.
type ReferentialError struct {
	Code       string
	Message    string
	Table      string
	Constraint string
	Err        error
}

func (e *ReferentialError) Error() string { return e.Message }

func (e *ReferentialError) Unwrap() error { return e.Err }

func (e *ReferentialError) Is(target error) bool {
	_, ok := target.(*ReferentialError)
	return ok
}

// ConstraintError reports a uniqueness, check, not-null or input validation failure.
type ConstraintError struct {
	Code       string
	Message    string
	Table      string
	Constraint string

	// Errors holds per-field details when the failure came from input validation.
	Errors []FieldError

	Err error
}

func (e *ConstraintError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}

	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+" "+fe.Error)
	}
	return e.Message + ": " + strings.Join(parts, ", ")
}

func (e *ConstraintError) Unwrap() error { return e.Err }

func (e *ConstraintError) Is(target error) bool {
	_, ok := target.(*ConstraintError)
	return ok
}

// RestrictedDeleteError reports a delete rejected by a RESTRICT foreign key.
type RestrictedDeleteError struct {
	Code       string
	Message    string
	Table      string
	Constraint string
	Err        error
}

func (e *RestrictedDeleteError) Error() string { return e.Message }

func (e *RestrictedDeleteError) Unwrap() error { return e.Err }

func (e *RestrictedDeleteError) Is(target error) bool {
	_, ok := target.(*RestrictedDeleteError)
	return ok
}

// TransientStoreError reports a connection-level failure.
// The whole operation may be retried; nothing was committed.
type TransientStoreError struct {
	Message string
	Err     error
}

func (e *TransientStoreError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

func (e *TransientStoreError) Is(target error) bool {
	_, ok := target.(*TransientStoreError)
	return ok
}

// StoreError is the fallback for failures that fit no other category.
type StoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *StoreError) Error() string { return e.Message }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	_, ok := target.(*StoreError)
	return ok
}

// NewNotFoundError creates a NotFoundError for entity identified by key.
func NewNotFoundError(entity string, key any) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// ValidationError wraps input field errors into a ConstraintError.
func ValidationError(fieldErrors []FieldError) *ConstraintError {
	return &ConstraintError{
		Code:    "VALIDATION_FAILED",
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
