// Package errs defines the error taxonomy of the data-access layer.
//
// Every store failure reaching a caller is one of the types below, so
// callers can branch with errors.As / errors.Is and never need to
// inspect driver errors.
package errs
