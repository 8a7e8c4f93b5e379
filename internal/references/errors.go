package references

import (
	"errors"
	"fmt"
)

var (
	ErrUnresolved    = errors.New("source not found")
	ErrOpen          = errors.New("source could not be opened")
	ErrUnknownOption = errors.New("unknown option")
	ErrInvalidOption = errors.New("invalid option value")
)

// SequenceError is recorded when a sequence stops contributing data.
type SequenceError struct {
	Op     string
	Source string
	Err    error
}

func (e *SequenceError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Source, e.Err)
}

func (e *SequenceError) Unwrap() error { return e.Err }
