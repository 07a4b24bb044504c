package dsl

import "fmt"

// ParseErrorKind enumerates the ways a command line can fail to parse.
type ParseErrorKind string

const (
	ErrInvalidHeader     ParseErrorKind = "invalid header"
	ErrBadCount          ParseErrorKind = "bad count"
	ErrMalformedKeyValue ParseErrorKind = "malformed kv"
	ErrUnterminatedQuote ParseErrorKind = "unterminated quote"
)

// ParseError reports a single unrecoverable problem with one command line.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

func parseErrorf(kind ParseErrorKind, format string, a ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Detail: fmt.Sprintf(format, a...)}
}
