package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match with errors.Is.
var (
	ErrUnknownColumn  = errors.New("unknown column")
	ErrMalformedInput = errors.New("malformed input")
	ErrUnsupportedOp  = errors.New("unsupported aggregation")
)

// ColumnError reports a column that is absent from the view, or present
// with the wrong role (e.g. a numeric column used as a filter).
type ColumnError struct {
	Column string
	Role   string // "filter", "group", "measure", "denominator", ...
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s column %q: %v", e.Role, e.Column, e.Err)
}

func (e *ColumnError) Unwrap() error { return e.Err }

func unknownColumn(role, column string) error {
	return &ColumnError{Column: column, Role: role, Err: ErrUnknownColumn}
}

// InputError reports a load-time data problem. Row is 1-based and counts
// the header line; zero means the header itself.
type InputError struct {
	Row    int
	Column string
	Reason string
}

func (e *InputError) Error() string {
	switch {
	case e.Row == 0 && e.Column == "":
		return fmt.Sprintf("%v: %s", ErrMalformedInput, e.Reason)
	case e.Row == 0:
		return fmt.Sprintf("%v: header: column %q: %s", ErrMalformedInput, e.Column, e.Reason)
	case e.Column == "":
		return fmt.Sprintf("%v: row %d: %s", ErrMalformedInput, e.Row, e.Reason)
	default:
		return fmt.Sprintf("%v: row %d, column %q: %s", ErrMalformedInput, e.Row, e.Column, e.Reason)
	}
}

func (e *InputError) Unwrap() error { return ErrMalformedInput }
