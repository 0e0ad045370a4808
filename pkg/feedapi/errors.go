package feedapi

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request so callers can branch on the failure
// mode instead of only observing absence of data.
type Kind string

const (
	// KindFormat means the endpoint template could not be resolved from the
	// supplied path parameters. No network call was made.
	KindFormat Kind = "format"
	// KindTransport covers connection failures, DNS errors and timeouts.
	KindTransport Kind = "transport"
	// KindStatus means the server answered with a non-2xx status.
	KindStatus Kind = "status"
	// KindDecode means the response body could not be parsed as JSON.
	KindDecode Kind = "decode"
	// KindValidation means the parsed body does not conform to the requested
	// response model.
	KindValidation Kind = "validation"
)

// Error is the tagged failure returned by Handler verbs.
type Error struct {
	Kind   Kind
	Status int
	URL    string
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("feedapi %s error (status %d) for %s: %v", e.Kind, e.Status, e.URL, e.Err)
	}
	return fmt.Sprintf("feedapi %s error for %s: %v", e.Kind, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind extracts the failure kind from err, if it is a feedapi error.
func ErrorKind(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return "", false
}

// IsStatus reports whether err is a non-2xx failure with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindStatus && apiErr.Status == code
}
