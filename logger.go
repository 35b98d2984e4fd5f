package dbtype

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// LogLevel represents the dbtype logging level. See LogLevel* constants for possible
// values.
type LogLevel int

// The values for log levels are chosen such that the zero value means that no log
// level was specified.
const (
	LogLevelTrace = LogLevel(6)
	LogLevelDebug = LogLevel(5)
	LogLevelInfo  = LogLevel(4)
	LogLevelWarn  = LogLevel(3)
	LogLevelError = LogLevel(2)
	LogLevelNone  = LogLevel(1)
)

func (ll LogLevel) String() string {
	switch ll {
	case LogLevelTrace:
		return "trace"
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	case LogLevelNone:
		return "none"
	default:
		return fmt.Sprintf("invalid level %d", ll)
	}
}

// Logger is the interface used to get log output from dbtype.
type Logger interface {
	// Log a message at the given level with data key/value pairs. data may be nil.
	Log(ctx context.Context, level LogLevel, msg string, data map[string]any)
}

// LoggerFunc is a wrapper around a function to satisfy the dbtype.Logger interface
type LoggerFunc func(ctx context.Context, level LogLevel, msg string, data map[string]any)

// Log delegates the logging request to the wrapped function
func (f LoggerFunc) Log(ctx context.Context, level LogLevel, msg string, data map[string]any) {
	f(ctx, level, msg, data)
}

// LogLevelFromString converts log level string to constant
//
// Valid levels:
//
//	trace
//	debug
//	info
//	warn
//	error
//	none
func LogLevelFromString(s string) (LogLevel, error) {
	switch s {
	case "trace":
		return LogLevelTrace, nil
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "none":
		return LogLevelNone, nil
	default:
		return 0, errors.New("invalid log level")
	}
}

// levelLogger drops messages more verbose than level before they reach logger. A nil
// logger discards everything.
type levelLogger struct {
	logger Logger
	level  LogLevel
}

func newLevelLogger(logger Logger, level LogLevel) levelLogger {
	if level == 0 {
		level = LogLevelDebug
	}
	return levelLogger{logger: logger, level: level}
}

func (ll levelLogger) enabled(level LogLevel) bool {
	return ll.logger != nil && ll.level >= level
}

func (ll levelLogger) log(level LogLevel, msg string, data map[string]any) {
	if !ll.enabled(level) {
		return
	}
	ll.logger.Log(context.Background(), level, msg, data)
}

// logValue shortens long strings so that user input cannot flood the log.
func logValue(v any) any {
	s, ok := v.(string)
	if !ok || len(s) <= 64 {
		return v
	}

	l := 0
	for w := 0; l < 64; l += w {
		_, w = utf8.DecodeRuneInString(s[l:])
	}
	if len(s) > l {
		return fmt.Sprintf("%s (truncated %d bytes)", s[:l], len(s)-l)
	}
	return v
}
