// Package obslog is reviewbridge's leveled logging interface, adapted from
// the teacher's adapter/observability.ReviewLogger. The teacher has no
// third-party structured-logging dependency anywhere in its tree (its
// ReviewLogger wraps the standard log package), so this package follows
// that precedent rather than introducing one; see DESIGN.md.
package obslog

import (
	"io"
	"log"
	"os"
)

// Logger is the leveled logging surface every component logs through,
// instead of calling log.Printf directly, so spec.md §7's "logged to
// stderr" behavior is centralized in one place.
type Logger interface {
	LogInfo(message string, fields map[string]any)
	LogWarning(message string, fields map[string]any)
	LogError(message string, fields map[string]any)
}

// StdLogger is the default Logger implementation, writing to stderr via
// the standard library logger.
type StdLogger struct {
	logger *log.Logger
}

// NewStdLogger builds a StdLogger writing to os.Stderr.
func NewStdLogger() *StdLogger {
	return &StdLogger{logger: log.New(os.Stderr, "", log.LstdFlags)}
}

// NewStdLoggerFor builds a StdLogger writing to an arbitrary writer.
func NewStdLoggerFor(w io.Writer) *StdLogger {
	return &StdLogger{logger: log.New(w, "", 0)}
}

func (l *StdLogger) LogInfo(message string, fields map[string]any) {
	l.logger.Printf("info: %s %v", message, fields)
}

func (l *StdLogger) LogWarning(message string, fields map[string]any) {
	l.logger.Printf("warning: %s %v", message, fields)
}

func (l *StdLogger) LogError(message string, fields map[string]any) {
	l.logger.Printf("error: %s %v", message, fields)
}
