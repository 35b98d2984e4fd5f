// Package log15adapter provides a logger that writes to a github.com/inconshreveable/log15.Logger
// log.
package log15adapter

import (
	"context"
	"sort"

	"github.com/uim-go/dbtype"
)

// Log15Logger interface defines the subset of
// github.com/inconshreveable/log15.Logger that this adapter uses.
type Log15Logger interface {
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

type Logger struct {
	l Log15Logger
}

func NewLogger(l Log15Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level dbtype.LogLevel, msg string, data map[string]any) {
	logArgs := make([]any, 0, len(data)*2+2)
	for _, k := range sortedKeys(data) {
		logArgs = append(logArgs, k, data[k])
	}

	switch level {
	case dbtype.LogLevelTrace:
		l.l.Debug(msg, append(logArgs, "DBTYPE_LOG_LEVEL", level)...)
	case dbtype.LogLevelDebug:
		l.l.Debug(msg, logArgs...)
	case dbtype.LogLevelInfo:
		l.l.Info(msg, logArgs...)
	case dbtype.LogLevelWarn:
		l.l.Warn(msg, logArgs...)
	case dbtype.LogLevelError:
		l.l.Error(msg, logArgs...)
	default:
		l.l.Error(msg, append(logArgs, "INVALID_DBTYPE_LOG_LEVEL", level)...)
	}
}

func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
