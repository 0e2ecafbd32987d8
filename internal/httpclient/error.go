package httpclient

import (
	goerrors "errors"

	ierr "github.com/kennelworks/kennelworks/internal/errors"
)

// Error represents an HTTP client error carrying the remote status and
// raw response body so the record store client can map 404/409 onto the
// domain error taxonomy.
type Error struct {
	*ierr.InternalError
	StatusCode int
	Response   []byte
}

func (e *Error) Unwrap() error {
	return e.InternalError.Unwrap()
}

func (e *Error) Error() string {
	return e.InternalError.Error()
}

// NewError creates a new HTTP client error
func NewError(statusCode int, response []byte) *Error {
	return &Error{
		InternalError: &ierr.InternalError{
			Code:    ierr.ErrCodeTransport,
			Message: "http request failed",
		},
		StatusCode: statusCode,
		Response:   response,
	}
}

// IsHTTPError checks if an error is an HTTP client error
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if goerrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
