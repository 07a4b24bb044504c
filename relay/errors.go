package relay

import "fmt"

// ErrorKind enumerates terminal relay failures.
type ErrorKind int

const (
	// ErrStrictRetryExhausted means a strict text turn failed twice: parse
	// failure, corrective retry, parse failure again.
	ErrStrictRetryExhausted ErrorKind = iota
	// ErrStructuredAllStagesFailed means every permitted structured stage
	// was exhausted with the strict flag set (or fallback disabled).
	ErrStructuredAllStagesFailed
	// ErrBadRun covers run setup problems: bad turn budget, unparseable
	// start line, oversized prompts.
	ErrBadRun
)

func (k ErrorKind) String() string {
	switch k {
	case ErrStrictRetryExhausted:
		return "strict retry exhausted"
	case ErrStructuredAllStagesFailed:
		return "structured relay failed all stages"
	default:
		return "relay run error"
	}
}

// Error is a terminal relay failure. Structured failures carry the stage
// that exhausted the machine, the machine-readable fallback reason and the
// last raw model output for diagnosis.
type Error struct {
	Kind           ErrorKind
	Stage          Stage
	FallbackReason string
	Raw            string
	Detail         string
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Stage != "" {
		msg += fmt.Sprintf(" (stage=%s)", e.Stage)
	}
	if e.FallbackReason != "" {
		msg += fmt.Sprintf(" (reason=%s)", e.FallbackReason)
	}
	if e.Raw != "" {
		raw := e.Raw
		if len(raw) > 200 {
			raw = raw[:200] + "..."
		}
		msg += fmt.Sprintf(" (last raw=%q)", raw)
	}
	return msg
}

func runErrorf(kind ErrorKind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, a...)}
}
