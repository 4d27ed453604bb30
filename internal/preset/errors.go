package preset

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("preset not found")
	ErrDuplicateID      = errors.New("preset id already exists")
	ErrInvalidID        = errors.New("invalid preset id")
	ErrInvalidReference = errors.New("reference to unknown preset")
	ErrSerialization    = errors.New("invalid preset document")
	ErrMerge            = errors.New("merge rule failed")
	ErrInvalidSettings  = errors.New("invalid settings")
)

// Error records the operation and preset id that produced an error.
type Error struct {
	Op  string
	ID  string
	Err error
}

func (e *Error) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.ID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opError(op, id string, err error) error {
	return &Error{Op: op, ID: id, Err: err}
}

// IsNotFound reports whether err indicates an unknown preset or key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateID reports whether err indicates an id collision.
func IsDuplicateID(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}

// IsInvalidReference reports whether err indicates an assignment to a missing preset.
func IsInvalidReference(err error) bool {
	return errors.Is(err, ErrInvalidReference)
}
