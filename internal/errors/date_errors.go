package errors

import (
	"errors"
	"fmt"
)

// ErrDateFormat is the cause of a DateParseError whose text does not match the
// "<day> <month>" grammar.
var ErrDateFormat = errors.New("expected day and month, e.g. \"14 Mar\"")

// DateParseError reports a tracker date that cannot be resolved to a calendar day.
type DateParseError struct {
	Row  int    // source row, 0 when unknown
	Text string // the offending cell text
	Year int    // reference year applied
	Err  error
}

// Error implements the error interface
func (e *DateParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: invalid date %q (year %d): %v", e.Row, e.Text, e.Year, e.Err)
	}
	return fmt.Sprintf("invalid date %q (year %d): %v", e.Text, e.Year, e.Err)
}

// Unwrap returns the underlying cause
func (e *DateParseError) Unwrap() error {
	return e.Err
}

// AsDateParseError extracts a DateParseError from err's chain.
func AsDateParseError(err error) (*DateParseError, bool) {
	var dpe *DateParseError
	if errors.As(err, &dpe) {
		return dpe, true
	}
	return nil, false
}
