// Package zapadapter provides a logger that writes to a go.uber.org/zap.Logger.
//
// zap has no trace level. Trace entries are written at debug level with a trace field.
package zapadapter

import (
	"context"
	"sort"

	"github.com/uim-go/dbtype"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levels = map[dbtype.LogLevel]zapcore.Level{
	dbtype.LogLevelTrace: zapcore.DebugLevel,
	dbtype.LogLevelDebug: zapcore.DebugLevel,
	dbtype.LogLevelInfo:  zapcore.InfoLevel,
	dbtype.LogLevelWarn:  zapcore.WarnLevel,
	dbtype.LogLevelError: zapcore.ErrorLevel,
}

type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (l *Logger) Log(ctx context.Context, level dbtype.LogLevel, msg string, data map[string]any) {
	lvl, ok := levels[level]
	if !ok {
		lvl = zapcore.ErrorLevel
	}

	// Fields are only built for entries the core will write.
	ce := l.logger.Check(lvl, msg)
	if ce == nil {
		return
	}

	fields := make([]zapcore.Field, 0, len(data)+1)
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err, isErr := data[k].(error); isErr {
			fields = append(fields, zap.NamedError(k, err))
			continue
		}
		fields = append(fields, zap.Any(k, data[k]))
	}

	switch {
	case !ok:
		fields = append(fields, zap.Int("dbtype_level", int(level)))
	case level == dbtype.LogLevelTrace:
		fields = append(fields, zap.Bool("trace", true))
	}

	ce.Write(fields...)
}
