package location

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrorKind classifies a failed position request.
type ErrorKind int

const (
	Unknown ErrorKind = iota
	CapabilityUnavailable
	PermissionDenied
	PositionUnavailable
	Timeout
)

func (k ErrorKind) String() string {
	switch k {
	case CapabilityUnavailable:
		return "capability_unavailable"
	case PermissionDenied:
		return "permission_denied"
	case PositionUnavailable:
		return "position_unavailable"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Message returns the user facing notification text for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case CapabilityUnavailable:
		return "Geolocation is not supported by this device."
	case PermissionDenied:
		return "User denied the request for Geolocation."
	case PositionUnavailable:
		return "Location information is unavailable."
	case Timeout:
		return "The request to get user location timed out."
	default:
		return "An unknown error occurred."
	}
}

// Error is a classified position request failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

// NewError wraps err with the given kind.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify maps an error returned by a provider to an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return Unknown
	}

	var locErr *Error
	switch {
	case errors.As(err, &locErr):
		return locErr.Kind
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return Timeout
	case errors.Is(err, os.ErrPermission):
		return PermissionDenied
	case errors.Is(err, os.ErrNotExist):
		return PositionUnavailable
	default:
		return Unknown
	}
}
