// Package validation contains the logic for validating
// repository inputs before they reach the store.
//
// It uses the `validator` library to enforce rules (like
// required fields or length limits) defined in struct tags
// and extracts validation errors into errs.FieldError values.
package validation
