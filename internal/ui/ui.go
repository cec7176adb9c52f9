// Package ui is the user-facing output surface: success/failure lines
// and search-term highlighting. It is deliberately separate from
// diagnostic logging (which goes through *log.Logger) and deliberately
// plain text: no color codes, no terminal capability detection.
package ui

import (
	"fmt"
	"io"
	"strings"
)

// Printer writes user-facing CLI output.
type Printer interface {
	Line(format string, args ...any)
	Success(format string, args ...any)
	Failure(format string, args ...any)
}

// Plain is the shipped Printer: every line goes to Out as plain text.
// Failure lines carry an "error: " prefix standing in for the
// original's red coloring; Line and Success output is unprefixed.
type Plain struct {
	Out io.Writer
}

func (p Plain) Line(format string, args ...any) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}

func (p Plain) Success(format string, args ...any) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}

func (p Plain) Failure(format string, args ...any) {
	fmt.Fprintf(p.Out, "error: "+format+"\n", args...)
}

// Highlight wraps every case-insensitive occurrence of term in s with
// ">>" "<<" markers, standing in for the original's color-coded
// highlighting of search matches.
func Highlight(s, term string) string {
	if term == "" {
		return s
	}
	lower := strings.ToLower(s)
	termLower := strings.ToLower(term)

	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(lower[i:], termLower)
		if idx < 0 {
			b.WriteString(s[i:])
			break
		}
		start := i + idx
		end := start + len(term)
		b.WriteString(s[i:start])
		b.WriteString(">>")
		b.WriteString(s[start:end])
		b.WriteString("<<")
		i = end
	}
	return b.String()
}
