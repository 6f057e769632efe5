// Package errors provides error handling for schedsync.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, sql.ErrNoRows) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// Common sentinel errors for use across schedsync.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested entity does not exist in the store
	ErrNotFound = New("not found")

	// ErrMalformedBundle indicates a scheduling document failed structural
	// validation in the front end. The reconciliation engine never produces
	// this error; bundles handed to Apply are assumed valid.
	ErrMalformedBundle = New("malformed bundle")

	// ErrStoreClosed indicates an operation was attempted against a store
	// whose underlying database connection has been closed
	ErrStoreClosed = New("store is closed")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsMalformedBundleError checks if an error is or wraps ErrMalformedBundle.
func IsMalformedBundleError(err error) bool {
	return err != nil && Is(err, ErrMalformedBundle)
}

// NewMalformedBundleError creates a malformed-bundle error with a formatted message
func NewMalformedBundleError(format string, args ...interface{}) error {
	return Wrap(ErrMalformedBundle, Newf(format, args...).Error())
}
