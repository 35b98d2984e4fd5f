// Package kitlogadapter provides a logger that writes to a github.com/go-kit/log.Logger.
//
// Each entry is a single Log call with the level first, then msg, then the data keys in
// sorted order. go-kit has no trace level; trace entries are logged at debug with
// trace=true so that level.NewFilter still applies to them.
package kitlogadapter

import (
	"context"
	"sort"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/uim-go/dbtype"
)

var levels = map[dbtype.LogLevel]func(log.Logger) log.Logger{
	dbtype.LogLevelTrace: level.Debug,
	dbtype.LogLevelDebug: level.Debug,
	dbtype.LogLevelInfo:  level.Info,
	dbtype.LogLevelWarn:  level.Warn,
	dbtype.LogLevelError: level.Error,
}

type Logger struct {
	l log.Logger
}

func NewLogger(l log.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, lvl dbtype.LogLevel, msg string, data map[string]any) {
	keyvals := make([]any, 0, 4+2*len(data))
	keyvals = append(keyvals, "msg", msg)
	if lvl == dbtype.LogLevelTrace {
		keyvals = append(keyvals, "trace", true)
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		keyvals = append(keyvals, k, data[k])
	}

	withLevel, ok := levels[lvl]
	if !ok {
		level.Error(l.l).Log(append(keyvals, "dbtype_level", int(lvl))...)
		return
	}
	withLevel(l.l).Log(keyvals...)
}
