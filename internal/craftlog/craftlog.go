// Package craftlog is a minimal wrapper around io.Writer, directly modeled
// on golang-dep's log package: a thin Logger plus a line-prefixed helper,
// rather than pulling in a structured logging library for a CLI whose
// entire ambient stack (per the teacher) is two plain writers.
package craftlog

import (
	"fmt"
	"io"
)

// Logger is a minimal wrapper around an io.Writer.
type Logger struct {
	io.Writer
}

// New returns a new Logger which writes to w.
func New(w io.Writer) *Logger {
	return &Logger{Writer: w}
}

// Logln logs a line.
func (l *Logger) Logln(args ...interface{}) {
	fmt.Fprintln(l, args...)
}

// Logf logs a formatted string.
func (l *Logger) Logf(f string, args ...interface{}) {
	fmt.Fprintf(l, f, args...)
}

// LogCraftfln logs a formatted line, prefixed with "craft: ".
func (l *Logger) LogCraftfln(format string, args ...interface{}) {
	fmt.Fprintf(l, "craft: "+format+"\n", args...)
}

// Verbosef logs a formatted line only when enabled is true, so that
// --verbose diagnostics can be gated at the call site without threading
// an if-statement through every command.
func (l *Logger) Verbosef(enabled bool, format string, args ...interface{}) {
	if !enabled {
		return
	}
	fmt.Fprintf(l, format, args...)
}
