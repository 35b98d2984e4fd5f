// Package logrusadapter provides a logger that writes to a github.com/sirupsen/logrus
// logger.
//
// dbtype trace messages are logged at logrus.TraceLevel. Error values in the data are
// logged under logrus.ErrorKey so that hooks and formatters treat them as errors.
package logrusadapter

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/uim-go/dbtype"
)

var levels = map[dbtype.LogLevel]logrus.Level{
	dbtype.LogLevelTrace: logrus.TraceLevel,
	dbtype.LogLevelDebug: logrus.DebugLevel,
	dbtype.LogLevelInfo:  logrus.InfoLevel,
	dbtype.LogLevelWarn:  logrus.WarnLevel,
	dbtype.LogLevelError: logrus.ErrorLevel,
}

type Logger struct {
	l logrus.FieldLogger
}

// NewLogger accepts a *logrus.Logger or a *logrus.Entry carrying fields of its own.
func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level dbtype.LogLevel, msg string, data map[string]any) {
	entry := l.l.WithFields(fields(data)).WithContext(ctx)

	lvl, ok := levels[level]
	if !ok {
		entry.WithField("dbtype_level", int(level)).Error(msg)
		return
	}
	entry.Log(lvl, msg)
}

func fields(data map[string]any) logrus.Fields {
	f := make(logrus.Fields, len(data))
	for k, v := range data {
		if err, ok := v.(error); ok {
			f[logrus.ErrorKey] = err
			continue
		}
		f[k] = v
	}
	return f
}
