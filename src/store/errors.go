package store

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a storage failure.
type Kind uint8

const (
	Unknown Kind = iota
	IoFailure
	FormatFailure
	NotFound
	MalformedInput
)

func (k Kind) String() string {
	switch k {
	case IoFailure:
		return "io failure"
	case FormatFailure:
		return "format failure"
	case NotFound:
		return "not found"
	case MalformedInput:
		return "malformed input"
	}
	return "unknown"
}

// Error is returned by every store in this module.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		return e.Kind.String()
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error. A nil err is allowed for conditions with no underlying cause.
func E(kind Kind, op, path string, err error) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Msg builds an *Error carrying only a message, for failures meant to be shown to users.
func Msg(kind Kind, msg string) error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsKind reports whether err is a store error of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
