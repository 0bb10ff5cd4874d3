package v1

import (
	"errors"

	"github.com/duynhne/contact-service/internal/core/domain"
	"github.com/duynhne/contact-service/middleware"
)

// Outcome labels for contact_operations_total.
const (
	resultOK        = "ok"
	resultInvalid   = "invalid"
	resultNotFound  = "not_found"
	resultDuplicate = "duplicate"
	resultError     = "error"
)

// operationResult maps an operation error onto its metric label.
func operationResult(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, domain.ErrValidation):
		return resultInvalid
	case errors.Is(err, domain.ErrContactNotFound):
		return resultNotFound
	case errors.Is(err, domain.ErrDuplicateEmail):
		return resultDuplicate
	default:
		return resultError
	}
}

func recordOperation(operation string, err error) {
	middleware.RecordContactOperation(operation, operationResult(err))
}
