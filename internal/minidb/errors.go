package minidb

import (
	"errors"
	"fmt"
)

// ValidationError is returned for rows that can never be stored. The table is
// left untouched.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// IOError wraps a failure of the underlying database file.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Message texts are part of the REPL contract, keep them in sync with the prompt tests.
var (
	ErrIDNotPositive = &ValidationError{msg: "ID must be positive."}
	ErrStringTooLong = &ValidationError{msg: "String is too long."}

	ErrDuplicateKey       = errors.New("Duplicate key.")
	ErrCapacity           = errors.New("Tried to fetch page number out of bounds.")
	ErrCorruptFile        = errors.New("Db file is not a whole number of pages. Corrupt file.")
	ErrSplitUnimplemented = errors.New("Need to implement updating parent after split")
)

// IsFatal reports whether err leaves the engine unable to continue. Validation
// errors and duplicate keys are reported to the caller and the session goes on.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return false
	}
	return !errors.Is(err, ErrDuplicateKey)
}

func errShortBuffer(what string, want uint64, got int) error {
	return fmt.Errorf("%s: buffer too short, want %d bytes, got %d", what, want, got)
}
