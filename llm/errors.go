package llm

import "fmt"

// TransportErrorKind distinguishes transport failures from HTTP error
// statuses and from provider envelope decode failures.
type TransportErrorKind int

const (
	// ErrTimeout is a request that exceeded the configured timeout.
	ErrTimeout TransportErrorKind = iota
	// ErrConnectionFailed is a failure to reach the endpoint at all.
	ErrConnectionFailed
	// ErrHTTPStatus is a non-success HTTP status from the endpoint.
	ErrHTTPStatus
	// ErrBadEnvelope is a response body that does not decode into the
	// provider's reply envelope.
	ErrBadEnvelope
	// ErrFormatUnsupported means the transport cannot honor the requested
	// response format; the relay treats it like any other transport failure
	// and advances its fallback machine.
	ErrFormatUnsupported
)

func (k TransportErrorKind) String() string {
	switch k {
	case ErrTimeout:
		return "timeout"
	case ErrConnectionFailed:
		return "connection failed"
	case ErrHTTPStatus:
		return "http status"
	case ErrBadEnvelope:
		return "bad response envelope"
	case ErrFormatUnsupported:
		return "format unsupported"
	default:
		return "transport error"
	}
}

// TransportError is a typed transport-level failure.
type TransportError struct {
	Kind   TransportErrorKind
	Status int // HTTP status, set for ErrHTTPStatus
	Detail string
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case ErrHTTPStatus:
		return fmt.Sprintf("%s: HTTP %d: %s", e.Kind, e.Status, e.Detail)
	default:
		if e.Detail == "" {
			return e.Kind.String()
		}
		return e.Kind.String() + ": " + e.Detail
	}
}

func transportErrorf(kind TransportErrorKind, format string, a ...interface{}) *TransportError {
	return &TransportError{Kind: kind, Detail: fmt.Sprintf(format, a...)}
}

func httpStatusError(status int, body string) *TransportError {
	const maxBody = 300
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	return &TransportError{Kind: ErrHTTPStatus, Status: status, Detail: body}
}
