package domain

import "errors"

// Sentinel errors for contact operations.
// Repositories translate store-specific codes into these; handlers never see driver errors.
var (
	// ErrContactNotFound indicates no contact exists for the requested id.
	// HTTP Status: 404 Not Found
	ErrContactNotFound = errors.New("contact not found")

	// ErrDuplicateEmail indicates another contact already uses the email.
	// HTTP Status: 409 Conflict
	ErrDuplicateEmail = errors.New("contact email already exists")

	// ErrValidation indicates a required field is missing.
	// HTTP Status: 400 Bad Request
	ErrValidation = errors.New("invalid contact")
)
