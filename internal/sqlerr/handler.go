package sqlerr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"

	"github.com/deppfellow/go-shopdb/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode reports the mapped Code for a given error, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// ConvertPgError converts a raw pgconn.PgError into an Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode creates "<DOMAIN>_<ACTION>" codes, e.g. USER_NOT_FOUND.
// These codes are meant for machines, not humans.
func generateErrorCode(domain string, errType Code) string {
	if domain == "" {
		domain = "RECORD"
	}

	domain = errs.MakeUpperCaseWithUnderscores(domain)

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case RestrictViolation:
		action = "IN_USE"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, ExclusionViolation, StringDataRightTruncation, NumericValueOutOfRange:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces a human readable message for sqlErr.
func formatUserFriendlyMessage(sqlErr *Error) string {
	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", referencedEntity(sqlErr))

	case RestrictViolation:
		return fmt.Sprintf("The %s is still referenced by %s and cannot be deleted",
			referencedEntity(sqlErr), getEntityName(sqlErr.TableName, ""))

	case UniqueViolation:
		// "identifier" is replaced by the column name when it can be inferred.
		return fmt.Sprintf("A %s with this identifier already exists", getEntityName(sqlErr.TableName, ""))

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation, StringDataRightTruncation, NumericValueOutOfRange:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		return "An error occurred while processing the request"
	}
}

// referencedEntity names the row a foreign key points at.
func referencedEntity(sqlErr *Error) string {
	if column := extractColumnForForeignKey(sqlErr.TableName, sqlErr.ConstraintName); column != "" {
		return getEntityName("", column)
	}
	return getEntityName(sqlErr.TableName, sqlErr.ColumnName)
}

// getEntityName infers an entity name from table/column data.
//
// Priority rules:
//  1. column ending with "_id" gives its base name ("user_id" -> "User")
//  2. table name, singularized when it ends with "s"
//  3. "record"
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts snake_case into Title Case.
//
//	"full_name" -> "Full Name"
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var uniqueKeyPattern = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// extractColumnForUniqueViolation infers the column from a unique constraint name.
//
// It supports "unique_<table>_<column>" and "<table>_<column>_(key|ukey)".
// Primary keys ("<table>_pkey") yield "".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	matches := uniqueKeyPattern.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// extractColumnForForeignKey infers the referencing column from a
// "<table>_<column>_fkey" constraint name.
func extractColumnForForeignKey(tableName, constraintName string) string {
	if !strings.HasSuffix(constraintName, "_fkey") {
		return ""
	}

	column := strings.TrimSuffix(constraintName, "_fkey")
	if tableName != "" && strings.HasPrefix(column, tableName+"_") {
		return strings.TrimPrefix(column, tableName+"_")
	}
	return ""
}

// isClassified reports whether err already belongs to the errs taxonomy.
func isClassified(err error) bool {
	return errors.Is(err, &errs.NotFoundError{}) ||
		errors.Is(err, &errs.ReferentialError{}) ||
		errors.Is(err, &errs.ConstraintError{}) ||
		errors.Is(err, &errs.RestrictedDeleteError{}) ||
		errors.Is(err, &errs.TransientStoreError{}) ||
		errors.Is(err, &errs.StoreError{})
}

// isTransient reports connection-level failures that happened before or
// instead of a server response.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed)
}

// HandleError converts a low-level database error into the errs taxonomy.
//
// Output:
//   - nil or an already classified error: returned unchanged
//   - pgconn.PgError: mapped by SQLSTATE
//   - ErrNoRows: errs.NotFoundError
//   - connection or context failures: errs.TransientStoreError
//   - anything else: errs.StoreError
func HandleError(err error) error {
	if err == nil || isClassified(err) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return classifyPgError(ConvertPgError(pgerr))
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return &errs.NotFoundError{Entity: "record"}
	case isTransient(err):
		return &errs.TransientStoreError{Message: "store unavailable", Err: err}
	}

	return &errs.StoreError{
		Code:    "STORE_ERROR",
		Message: "unexpected store failure",
		Err:     err,
	}
}

// HandleDeleteError is HandleError for DELETE statements.
//
// PostgreSQL reports a RESTRICT / NO ACTION rejection of a delete as a
// foreign key violation; on a delete that always means the row is still
// referenced, so it becomes errs.RestrictedDeleteError.
func HandleDeleteError(err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && MapCode(pgerr.Code) == ForeignKeyViolation {
		sqlErr := ConvertPgError(pgerr)
		sqlErr.Code = RestrictViolation
		return classifyPgError(sqlErr)
	}
	return HandleError(err)
}

func classifyPgError(sqlErr *Error) error {
	userMessage := formatUserFriendlyMessage(sqlErr)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return &errs.ReferentialError{
			Code:       generateErrorCode(referencedEntity(sqlErr), sqlErr.Code),
			Message:    userMessage,
			Table:      sqlErr.TableName,
			Constraint: sqlErr.ConstraintName,
			Err:        sqlErr,
		}

	case RestrictViolation:
		return &errs.RestrictedDeleteError{
			Code:       generateErrorCode(referencedEntity(sqlErr), sqlErr.Code),
			Message:    userMessage,
			Table:      sqlErr.TableName,
			Constraint: sqlErr.ConstraintName,
			Err:        sqlErr,
		}

	case UniqueViolation:
		if columnName := extractColumnForUniqueViolation(sqlErr.ConstraintName); columnName != "" {
			userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
		}
		return &errs.ConstraintError{
			Code:       generateErrorCode(getEntityName(sqlErr.TableName, ""), sqlErr.Code),
			Message:    userMessage,
			Table:      sqlErr.TableName,
			Constraint: sqlErr.ConstraintName,
			Err:        sqlErr,
		}

	case NotNullViolation:
		return &errs.ConstraintError{
			Code:       generateErrorCode(getEntityName(sqlErr.TableName, ""), sqlErr.Code),
			Message:    userMessage,
			Table:      sqlErr.TableName,
			Constraint: sqlErr.ConstraintName,
			Errors: []errs.FieldError{
				{Field: strings.ToLower(sqlErr.ColumnName), Error: "is required"},
			},
			Err: sqlErr,
		}

	case CheckViolation, ExclusionViolation, StringDataRightTruncation, NumericValueOutOfRange:
		return &errs.ConstraintError{
			Code:       generateErrorCode(getEntityName(sqlErr.TableName, ""), sqlErr.Code),
			Message:    userMessage,
			Table:      sqlErr.TableName,
			Constraint: sqlErr.ConstraintName,
			Err:        sqlErr,
		}
	}

	if sqlErr.Code.IsTransient() {
		return &errs.TransientStoreError{Message: "store unavailable", Err: sqlErr}
	}

	return &errs.StoreError{
		Code:    generateErrorCode(getEntityName(sqlErr.TableName, ""), sqlErr.Code),
		Message: userMessage,
		Err:     sqlErr,
	}
}
