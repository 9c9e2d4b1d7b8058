package pylog

import (
	"io"
	"log"
	"os"
)

// Interface is the subset of log.Logger used throughout the analyzer. It
// exists so that callers can swap in a test logger or discard output.
type Interface interface {
	Printf(fmt string, v ...interface{})
	Println(v ...interface{})
}

// Logger wraps a standard logger together with an optional durations
// accumulator for coarse phase timings.
type Logger struct {
	*log.Logger
	Durations *Durations
}

// Basic constructs a logger that writes to stderr with the standard flags.
func Basic() *Logger {
	return &Logger{
		Logger: log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile),
	}
}

// New constructs a logger writing to w with the given prefix.
func New(w io.Writer, prefix string) *Logger {
	return &Logger{
		Logger: log.New(w, prefix, log.LstdFlags|log.Lshortfile),
	}
}

// Discard constructs a logger that drops all output.
func Discard() *Logger {
	return &Logger{
		Logger: log.New(io.Discard, "", 0),
	}
}

// WithDurations returns a copy of the logger that records durations under
// the given label set.
func (l *Logger) WithDurations(d *Durations) *Logger {
	out := *l
	out.Durations = d
	return &out
}
