package automate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is returned when required connection settings are
	// missing or malformed. It is only ever produced while constructing a
	// client, never by a call against the remote API.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrAuthentication is returned when the login exchange fails or when a
	// request is denied again after re-authenticating.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRequest is returned for any other failed call to the remote API.
	ErrRequest = errors.New("remote request failed")

	// ErrInvalidArgument is returned when a caller passes parameters outside
	// the documented limits of an operation.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error describes a failed client operation. StatusCode and Body are set when
// the remote API answered with a non-success status.
type Error struct {
	// Op is the client operation that failed, e.g. "ListComputers".
	Op string

	// Err is one of the sentinel errors above.
	Err error

	// Cause is the underlying error, if any (transport or decode failure).
	Cause error

	StatusCode int
	Body       string
	Msg        string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	if e.Msg != "" {
		b.WriteString(e.Msg)
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	return b.String()
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// StatusCode returns the HTTP status attached to err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
