package inspector

import (
	"errors"
)

// Kind is the closed set of failures an inspection can report.
type Kind int

const (
	KindOther Kind = iota
	KindUsage
	KindRequest
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindRequest:
		return "request"
	case KindDecode:
		return "decode"
	default:
		return "other"
	}
}

// Label is the human-readable prefix used when the error is reported.
func (k Kind) Label() string {
	switch k {
	case KindUsage:
		return "Usage Error"
	case KindRequest:
		return "Request Error"
	case KindDecode:
		return "JSON Decode Error"
	default:
		return "Unexpected error"
	}
}

type Error struct {
	Kind Kind
	Err  error

	// Body holds the raw response text for decode failures.
	Body string
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Label()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func UsageError(msg string) error {
	return &Error{Kind: KindUsage, Err: errors.New(msg)}
}

// KindOf classifies err. Errors that did not come from this package are
// reported as KindOther.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindOther
}

// RawBody returns the response body attached to a decode error, if any.
func RawBody(err error) string {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Body
	}
	return ""
}
