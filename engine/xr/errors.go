package xr

import (
	"errors"
	"fmt"
)

// Kind classifies XR startup failures.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindPlatformUnsupported means the platform has no XR support or cannot answer a probe.
	KindPlatformUnsupported
	// KindElementNotFound means a window, document, canvas or body element is missing.
	KindElementNotFound
	// KindElementWrongType means an element exists but is not the expected kind of element.
	KindElementWrongType
	// KindContextNotFound means the canvas could not produce a drawing context.
	KindContextNotFound
	// KindPlatformRejection wraps an opaque value the platform rejected a request with.
	KindPlatformRejection
	// KindSessionLost means the session ended while an operation depended on it.
	KindSessionLost
	// KindRequestPending means a session request is already in flight.
	KindRequestPending
)

func (k Kind) String() string {
	switch k {
	case KindPlatformUnsupported:
		return "platform unsupported"
	case KindElementNotFound:
		return "element not found"
	case KindElementWrongType:
		return "element wrong type"
	case KindContextNotFound:
		return "context not found"
	case KindPlatformRejection:
		return "platform rejection"
	case KindSessionLost:
		return "session lost"
	case KindRequestPending:
		return "request pending"
	default:
		return "unknown"
	}
}

// Error is a classified XR failure. The package level Err values are the only instances;
// wrap them with fmt.Errorf to add context and compare with errors.Is.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

var (
	ErrNotSupported     = &Error{Kind: KindPlatformUnsupported, msg: "xr is not supported on this platform"}
	ErrNotABool         = &Error{Kind: KindPlatformUnsupported, msg: "session support probe did not answer with a boolean"}
	ErrNoWindow         = &Error{Kind: KindElementNotFound, msg: "no window"}
	ErrNoDocument       = &Error{Kind: KindElementNotFound, msg: "no document"}
	ErrNoBody           = &Error{Kind: KindElementNotFound, msg: "document has no body"}
	ErrCanvasNotFound   = &Error{Kind: KindElementNotFound, msg: "canvas not found"}
	ErrElementWrongType = &Error{Kind: KindElementWrongType, msg: "element has the wrong type"}
	ErrContextNotFound  = &Error{Kind: KindContextNotFound, msg: "drawing context not found"}
	ErrSessionLost      = &Error{Kind: KindSessionLost, msg: "session ended"}
	ErrRequestPending   = &Error{Kind: KindRequestPending, msg: "a session request is already pending"}
)

// PlatformError wraps a value the platform rejected an operation with. Value is whatever the
// platform produced (an exception object, a message string, an error) and is not interpreted.
type PlatformError struct {
	Op    string
	Value any
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: platform rejected the request: %v", e.Op, e.Value)
}

// Unwrap exposes Value when the platform handed back a Go error.
func (e *PlatformError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Reject builds a PlatformError for op.
func Reject(op string, value any) error {
	return &PlatformError{Op: op, Value: value}
}

// KindOf classifies err. Wrapped errors are unwrapped; anything outside the taxonomy is
// KindUnknown.
//
// Parameters:
//   - err: the error to classify
//
// Returns:
//   - Kind: the taxonomy kind
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var pe *PlatformError
	if errors.As(err, &pe) {
		return KindPlatformRejection
	}
	var xe *Error
	if errors.As(err, &xe) {
		return xe.Kind
	}
	return KindUnknown
}
