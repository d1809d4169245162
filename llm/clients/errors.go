package clients

import "fmt"

// ErrorKind classifies a RequestError. Every kind maps to the same
// user-facing apology; the kind only drives logging and caller policy.
type ErrorKind int

const (
	KindInvalidRequest ErrorKind = iota
	KindTimeout
	KindTransport
	KindNoChoices
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindNoChoices:
		return "no_choices"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// RequestError is returned by GenerateReply for every per-request failure.
// The underlying cause is kept for diagnostics through Unwrap and Cause.
type RequestError struct {
	Kind  ErrorKind
	Msg   string
	cause error
}

func newRequestError(kind ErrorKind, msg string, cause error) *RequestError {
	return &RequestError{Kind: kind, Msg: msg, cause: cause}
}

func (e *RequestError) Error() string {
	if e.cause != nil {
		return e.Msg + ": " + e.cause.Error()
	}
	return e.Msg
}

func (e *RequestError) Unwrap() error { return e.cause }

// Cause satisfies github.com/pkg/errors.Cause.
func (e *RequestError) Cause() error { return e.cause }

// Timeout reports whether the deadline elapsed before a response arrived.
func (e *RequestError) Timeout() bool { return e.Kind == KindTimeout }
