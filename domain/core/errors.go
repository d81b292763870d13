package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrPanelNotFound = fmt.Errorf("%w: panel", ErrNotFound)
	ErrFigureMissing = fmt.Errorf("%w: figure", ErrNotFound)

	// State errors
	ErrNoDataset     = errors.New("no dataset loaded")
	ErrDuplicateName = errors.New("duplicate column name")
)

// NewNotFoundError wraps ErrNotFound with the resource and id
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// IsNotFoundError reports whether err is any not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
