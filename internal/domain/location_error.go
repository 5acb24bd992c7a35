package domain

import "fmt"

// ErrorKind classifies why the user's location could not be obtained.
type ErrorKind string

const (
	KindUnsupported         ErrorKind = "unsupported"
	KindPermissionDenied    ErrorKind = "permission_denied"
	KindPositionUnavailable ErrorKind = "position_unavailable"
	KindTimeout             ErrorKind = "timeout"
	KindUnknown             ErrorKind = "unknown"
)

// Retryable reports whether a later attempt may succeed without user action.
func (k ErrorKind) Retryable() bool {
	return k == KindPositionUnavailable || k == KindTimeout
}

// LocationError is the only error type returned by the location service.
type LocationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Sentinels for errors.Is matching on kind alone.
var (
	ErrUnsupported         = &LocationError{Kind: KindUnsupported}
	ErrPermissionDenied    = &LocationError{Kind: KindPermissionDenied}
	ErrPositionUnavailable = &LocationError{Kind: KindPositionUnavailable}
	ErrTimeout             = &LocationError{Kind: KindTimeout}
	ErrUnknown             = &LocationError{Kind: KindUnknown}
)

func NewLocationError(kind ErrorKind, msg string, err error) *LocationError {
	return &LocationError{Kind: kind, Message: msg, Err: err}
}

func (e *LocationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("location %s", e.Kind)
	}
	return fmt.Sprintf("location %s: %s", e.Kind, e.Message)
}

func (e *LocationError) Unwrap() error { return e.Err }

// Is matches any LocationError of the same kind.
func (e *LocationError) Is(target error) bool {
	t, ok := target.(*LocationError)
	return ok && t.Kind == e.Kind
}
