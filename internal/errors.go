package internal

import (
	"errors"
	"net/http"
)

// HTTPError is an error with an HTTP status code and a user-facing message.
type HTTPError struct {
	// Err is the underlying error, logged but never shown to clients.
	Err error

	Message string
	Code    int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusCode returns the response status for the error.
func (e *HTTPError) StatusCode() int {
	return e.Code
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// WithError attaches the underlying cause.
func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// NewHTTPError creates a new HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AsHTTPError extracts an HTTPError from err's chain. Returns nil if absent.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// defaultErrorHandler writes HTTPErrors with their status and everything
// else as a 500.
func defaultErrorHandler(c Context, err error) error {
	if httpErr := AsHTTPError(err); httpErr != nil {
		return c.JSON(httpErr.Code, map[string]string{"error": httpErr.Message})
	}
	c.LogError("request failed", "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
}
