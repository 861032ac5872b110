// Package wavelog wraps the standard logger with the prefix and flags every
// wavetext binary logs with, plus a tracker for phase durations.
package wavelog

import (
	"fmt"
	"io"
	"log"
	"os"
)

var (
	component = os.Getenv("WAVETEXT_COMPONENT")

	flags = log.LstdFlags | log.Lshortfile | log.Lmicroseconds
)

func prefixFor(name string) string {
	if name == "" {
		return "[wavetext] "
	}
	return fmt.Sprintf("[wavetext %s] ", name)
}

func init() {
	// for callers still using the standard log package
	log.SetPrefix(prefixFor(component))
	log.SetFlags(flags)
}

// Basic prefixes every line with the wavetext component name.
var Basic = New(os.Stderr, component)

// New creates a Logger that writes to w, tagging lines with name.
func New(w io.Writer, name string) *Logger {
	return &Logger{
		Default: log.New(w, prefixFor(name), flags),
	}
}

// Logger pairs a standard logger with a Durations tracker.
type Logger struct {
	Default   *log.Logger
	Durations Durations
}

// Interface encapsulates the relevant methods of log.Logger
type Interface interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Printf implements Interface
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Default.Output(2, fmt.Sprintf(format, v...))
}

// Println implements Interface
func (l *Logger) Println(v ...interface{}) {
	l.Default.Output(2, fmt.Sprintln(v...))
}
