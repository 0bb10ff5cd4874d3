package v1

import (
	"errors"
	"io"
)

// sanitizeBindError returns a user-friendly message for JSON binding errors.
// Never expose raw decoder errors to clients.
func sanitizeBindError(err error) string {
	// An empty body carries none of the required fields.
	if errors.Is(err, io.EOF) {
		return msgRequiredFields
	}
	return msgInvalidBody
}
