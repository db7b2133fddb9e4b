package domain

// Error carries the HTTP status the transport layer should answer with.
// Services return these; the ez action layer maps anything else to 500.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "error"
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) *Error   { return &Error{Status: 400, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Status: 401, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Status: 403, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Status: 404, Message: msg} }
func NotConfigured(msg string) *Error {
	return &Error{Status: 500, Message: msg}
}
func Internal(msg string, err error) *Error {
	return &Error{Status: 500, Message: msg, Err: err}
}

var (
	// ErrDuplicateEmail covers both the pre-check and the unique-index
	// race at insert time.
	ErrDuplicateEmail = BadRequest("email already registered")
	// ErrInvalidCredentials is deliberately identical for unknown email
	// and wrong password.
	ErrInvalidCredentials = BadRequest("invalid credentials")
)
