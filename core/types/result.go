package types

import (
	"errors"
)

// Code is the stable numeric identifier surfaced to callers for a failed call.
type Code int

const (
	// CodeInvalidArgument reports well-typed input that is semantically invalid.
	CodeInvalidArgument Code = 400
	// CodeForbidden reports a caller without the required authority.
	CodeForbidden Code = 403
	// CodeNotFound reports a missing asset or revenue-share configuration.
	CodeNotFound Code = 404
	// CodeInternal reports a state backend failure.
	CodeInternal Code = 500
	// CodeUnknownMethod reports a dispatch failure. It shares the JSON-RPC
	// method-not-found value and never collides with the domain codes.
	CodeUnknownMethod Code = -32601
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownMethod   = errors.New("unknown method")
)

// String returns the taxonomy name of the code.
func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "InvalidArgument"
	case CodeForbidden:
		return "Forbidden"
	case CodeNotFound:
		return "NotFound"
	case CodeUnknownMethod:
		return "UnknownMethod"
	default:
		return "Internal"
	}
}

// CodeOf classifies err against the error taxonomy. Errors outside the
// taxonomy are treated as internal failures.
func CodeOf(err error) Code {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrUnknownMethod):
		return CodeUnknownMethod
	default:
		return CodeInternal
	}
}

// Result is the uniform outcome of a dispatched call.
type Result struct {
	Success bool        `json:"success"`
	Value   interface{} `json:"value,omitempty"`
	Error   Code        `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Ok wraps a successful call. A nil value means the call has no payload.
func Ok(value interface{}) Result {
	return Result{Success: true, Value: value}
}

// Fail converts err into a failed result.
func Fail(err error) Result {
	if err == nil {
		return Result{Success: false, Error: CodeInternal, Message: "unknown failure"}
	}
	return Result{Success: false, Error: CodeOf(err), Message: err.Error()}
}
