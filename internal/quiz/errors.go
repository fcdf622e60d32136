package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDecode           = errors.New("malformed encoded text")
	ErrOptionOutOfRange = errors.New("option index out of range")
	ErrClosed           = errors.New("quiz session closed")
)

// DecodeError reports a percent-encoded text that could not be decoded.
// It matches ErrDecode with errors.Is.
type DecodeError struct {
	Text string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Text, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
