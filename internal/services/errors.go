// Package services holds the portal's business operations. Handlers and
// the CLI call into it; storage sits behind narrow interfaces.
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidLevel     = errors.New("invalid access level")
	ErrMissingFile      = errors.New("file is required")
	ErrFileTooLarge     = errors.New("file is too large")
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrNumberExhausted  = errors.New("could not allocate a unique invoice number")
	ErrMiniTaskNotFound = errors.New("mini task not found")
	ErrProjectMismatch  = errors.New("project does not belong to the client")
)

// ParseID parses a path or body id, naming the field in the error.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrInvalidID, field)
	}
	return id, nil
}
