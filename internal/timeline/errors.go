package timeline

import "errors"

// ErrEntryNotFound is returned by LoadEntry when no entry matches.
var ErrEntryNotFound = errors.New("timeline entry not found")

// ParseError is returned when a stored JSON document exists but cannot be
// decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
