// Package domain defines the marketplace models used by the Hyperlocal client.
package domain

// Error is a client-side failure with a stable code of the form
// HL-<AREA>-<NNNN>. Errors with equal codes match under errors.Is.
type Error struct {
	Code    string
	Message string
	Details string
	Cause   error
}

// NewError returns an Error with code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	s := e.Code + ": " + e.Message
	if e.Details != "" {
		s += " (" + e.Details + ")"
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy carrying details.
func (e *Error) WithDetails(details string) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

// Session storage.
var (
	ErrEmptyToken     = NewError("HL-SESS-4000", "session token must not be empty")
	ErrSessionStorage = NewError("HL-SESS-5000", "session storage error")
)

// ErrNotAuthenticated is returned when a protected page or call is reached
// without a signed-in user.
var ErrNotAuthenticated = NewError("HL-AUTH-4010", "login required")

// ErrNoCurrentUser is returned when an operation needs the signed-in user's
// id but the session holds no user.
var ErrNoCurrentUser = NewError("HL-USER-4040", "no current user in session")

// Command arguments.
var (
	ErrInvalidArgument = NewError("HL-ARG-1001", "invalid argument")
	ErrMissingArgument = NewError("HL-ARG-1002", "missing required argument")
)
