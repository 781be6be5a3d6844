// Package services defines the business logic for templates, suggestions,
// and usage acceptance. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrTemplateNotFound indicates that the requested template does not
	// exist or is not accessible to the current user.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidTemplate is returned when template input fails validation
	// (e.g. an empty body) at the store boundary.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrBadVariant is returned when an acceptance names a variant index
	// the template does not have.
	ErrBadVariant = errors.New("variant index out of range")

	// ErrEmptyGroup is returned when a suggestion or acceptance request
	// omits the conversational group id.
	ErrEmptyGroup = errors.New("group id is empty")

	// ErrEmptyImport is returned when an import payload contains no
	// usable templates.
	ErrEmptyImport = errors.New("no templates to import")
)
