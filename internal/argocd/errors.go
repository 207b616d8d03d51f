package argocd

import (
	"errors"
	"net/http"
)

// ErrType classifies API failures so the UI can pick a reaction.
type ErrType int

const (
	ErrUnknown      ErrType = iota
	ErrUnauthorized         // 401: token missing or expired
	ErrForbidden            // 403
	ErrNotFound             // 404
	ErrConflict             // 409
	ErrServerError          // 500+
	ErrUnreachable          // transport failure (DNS, refused, timeout)
	ErrTLS                  // certificate problems
)

func (t ErrType) String() string {
	switch t {
	case ErrUnauthorized:
		return "unauthorized"
	case ErrForbidden:
		return "forbidden"
	case ErrNotFound:
		return "not found"
	case ErrConflict:
		return "conflict"
	case ErrServerError:
		return "server error"
	case ErrUnreachable:
		return "unreachable"
	case ErrTLS:
		return "tls"
	default:
		return "unknown"
	}
}

// APIError wraps a failed Argo CD request with its classification.
type APIError struct {
	Type    ErrType
	Status  int
	Method  string
	Path    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func typeForStatus(code int) ErrType {
	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrConflict
	case code >= 500:
		return ErrServerError
	default:
		return ErrUnknown
	}
}

// ErrorType returns the classification of err, or ErrUnknown.
func ErrorType(err error) ErrType {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrUnknown
}

// IsUnauthorized reports whether err means the session has expired.
func IsUnauthorized(err error) bool {
	return ErrorType(err) == ErrUnauthorized
}

func IsNotFound(err error) bool {
	return ErrorType(err) == ErrNotFound
}
