// Package logging provides the structured logger and the user-facing
// warning sink shared by the acquisition packages.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Logger provides structured logging for acquisition operations.
// This interface allows callers to plug in their own logging implementation.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs info-level messages with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs warning-level messages with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs error-level messages with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})
}

// noopLogger is a Logger implementation that does nothing.
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Noop returns a logger that discards everything.
func Noop() Logger {
	return &noopLogger{}
}

// zerologLogger adapts zerolog to Logger.
type zerologLogger struct {
	zlog zerolog.Logger
}

// NewZerolog creates a Logger writing to w. Level is one of debug, info,
// warn, error; anything else means info. Console selects the human-readable
// zerolog console writer instead of JSON lines.
func NewZerolog(w io.Writer, level string, console bool) Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	zlog := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(level))
	return &zerologLogger{zlog: zlog}
}

func (l *zerologLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.emit(l.zlog.Debug(), msg, keysAndValues)
}

func (l *zerologLogger) Info(msg string, keysAndValues ...interface{}) {
	l.emit(l.zlog.Info(), msg, keysAndValues)
}

func (l *zerologLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.emit(l.zlog.Warn(), msg, keysAndValues)
}

func (l *zerologLogger) Error(msg string, keysAndValues ...interface{}) {
	l.emit(l.zlog.Error(), msg, keysAndValues)
}

// emit attaches key-value pairs to the event. A trailing key without a value
// is logged under "!BADKEY" rather than dropped.
func (l *zerologLogger) emit(ev *zerolog.Event, msg string, keysAndValues []interface{}) {
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		if i+1 >= len(keysAndValues) {
			ev = ev.Interface("!BADKEY", key)
			break
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, keysAndValues[i+1])
	}
	ev.Msg(msg)
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
