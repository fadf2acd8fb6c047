// Package sqlerr specifically handles database driver errors.
//
// It parses SQLSTATE codes from the PostgreSQL driver and converts
// them into the errs taxonomy (e.g. a "foreign key violation" on
// insert becomes an errs.ReferentialError).
package sqlerr

import "strings"

// Code is a driver-independent category for a SQLSTATE.
type Code string

const (
	Other                     Code = "other"
	NotNullViolation          Code = "not_null_violation"
	ForeignKeyViolation       Code = "foreign_key_violation"
	UniqueViolation           Code = "unique_violation"
	CheckViolation            Code = "check_violation"
	ExclusionViolation        Code = "exclusion_violation"
	RestrictViolation         Code = "restrict_violation"
	StringDataRightTruncation Code = "string_data_right_truncation"
	NumericValueOutOfRange    Code = "numeric_value_out_of_range"
	SerializationFailure      Code = "serialization_failure"
	DeadlockDetected          Code = "deadlock_detected"
	ConnectionException       Code = "connection_exception"
	TooManyConnections        Code = "too_many_connections"
	AdminShutdown             Code = "admin_shutdown"
	CrashShutdown             Code = "crash_shutdown"
	CannotConnectNow          Code = "cannot_connect_now"
	QueryCanceled             Code = "query_canceled"
)

// MapCode maps a PostgreSQL SQLSTATE to a Code.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "23P01":
		return ExclusionViolation
	case "23001":
		return RestrictViolation
	case "22001":
		return StringDataRightTruncation
	case "22003":
		return NumericValueOutOfRange
	case "40001":
		return SerializationFailure
	case "40P01":
		return DeadlockDetected
	case "53300":
		return TooManyConnections
	case "57P01":
		return AdminShutdown
	case "57P02":
		return CrashShutdown
	case "57P03":
		return CannotConnectNow
	case "57014":
		return QueryCanceled
	}

	// Class 08 covers every connection exception.
	if strings.HasPrefix(sqlstate, "08") {
		return ConnectionException
	}

	return Other
}

// IsTransient reports whether a failure with this code can be retried as a whole.
func (c Code) IsTransient() bool {
	switch c {
	case SerializationFailure, DeadlockDetected, ConnectionException, TooManyConnections,
		AdminShutdown, CrashShutdown, CannotConnectNow, QueryCanceled:
		return true
	}
	return false
}

// Severity mirrors the PostgreSQL severity field.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// MapSeverity maps the raw severity string, defaulting to SeverityError.
func MapSeverity(severity string) Severity {
	switch Severity(strings.ToUpper(severity)) {
	case SeverityFatal:
		return SeverityFatal
	case SeverityPanic:
		return SeverityPanic
	case SeverityWarning:
		return SeverityWarning
	case SeverityNotice:
		return SeverityNotice
	case SeverityDebug:
		return SeverityDebug
	case SeverityInfo:
		return SeverityInfo
	case SeverityLog:
		return SeverityLog
	default:
		return SeverityError
	}
}

// Error is a normalized database error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	driverErr error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the original driver error for debugging.
func (e *Error) Unwrap() error {
	return e.driverErr
}
