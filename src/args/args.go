// Package args splits the text following a command name into arguments.
//
// Arguments are separated by spaces. An argument that begins with a double quote runs to the
// next unescaped double quote, so it may contain spaces. Inside quotes \" is a literal quote
// and \\ a literal backslash; a backslash before anything else is kept as is. A missing
// closing quote is not an error: the argument runs to the end of the text.
package args

import (
	"strings"
	"unicode"
)

// Args is a lazy, single-pass sequence of arguments.
type Args struct {
	rest string
}

// New returns the arguments of s.
func New(s string) *Args {
	return &Args{rest: trim(s)}
}

// Next returns the next argument, or false when none remain.
func (a *Args) Next() (string, bool) {
	if a.rest == "" {
		return "", false
	}
	if a.rest[0] == '"' {
		return a.quoted(), true
	}

	msg := a.rest
	i := strings.IndexByte(msg, ' ')
	if i < 0 {
		a.rest = ""
		return msg, true
	}
	a.rest = trim(msg[i:])
	return msg[:i], true
}

// quoted consumes a quoted argument. Without escapes the result is a substring of the input.
func (a *Args) quoted() string {
	msg := a.rest

	var out *strings.Builder
	from := 1
	for i := 1; i < len(msg); {
		j := strings.IndexAny(msg[i:], `"\`)
		if j < 0 {
			break
		}
		i += j

		if msg[i] == '"' {
			a.rest = trim(msg[i+1:])
			if out == nil {
				return msg[from:i]
			}
			out.WriteString(msg[from:i])
			return out.String()
		}

		// Backslash: only \" and \\ are escapes.
		if i+1 < len(msg) && (msg[i+1] == '"' || msg[i+1] == '\\') {
			if out == nil {
				out = &strings.Builder{}
			}
			out.WriteString(msg[from:i])
			from = i + 1
			i += 2
			continue
		}
		i++
	}

	// Unterminated.
	a.rest = ""
	if out == nil {
		return msg[from:]
	}
	out.WriteString(msg[from:])
	return out.String()
}

// Rest returns the unconsumed text without advancing.
func (a *Args) Rest() string {
	return a.rest
}

// Empty reports whether no arguments remain.
func (a *Args) Empty() bool {
	return a.rest == ""
}

// All consumes the remaining arguments and returns them.
func (a *Args) All() []string {
	var out []string
	for {
		s, ok := a.Next()
		if !ok {
			return out
		}
		out = append(out, s)
	}
}

func trim(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}
