package layout

import (
	"errors"
	"fmt"

	"board-tester/internal/field"
)

var (
	// ErrNotFound is returned when a layout file, its background file or a
	// named field does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateID is returned when a field id is already in use.
	ErrDuplicateID = errors.New("duplicate field id")

	// ErrBlankID is returned when a field id is empty.
	ErrBlankID = field.ErrBlankID
)

// ParseError reports a malformed layout document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse layout: %v", e.Err)
	}
	return fmt.Sprintf("parse layout %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
