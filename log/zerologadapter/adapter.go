// Package zerologadapter provides a logger that writes to a github.com/rs/zerolog.
package zerologadapter

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/uim-go/dbtype"
)

type Logger struct {
	logger      zerolog.Logger
	withFunc    func(context.Context, zerolog.Context) zerolog.Context
	fromContext bool
	skipModule  bool
}

// option options for configuring the logger when creating a new logger.
type option func(logger *Logger)

// WithContextFunc adds possibility to get request scoped values from the
// ctx.Context before logging lines.
func WithContextFunc(withFunc func(context.Context, zerolog.Context) zerolog.Context) option {
	return func(logger *Logger) {
		logger.withFunc = withFunc
	}
}

// WithoutDBTypeModule disables adding module:dbtype to the default logger context.
func WithoutDBTypeModule() option {
	return func(logger *Logger) {
		logger.skipModule = true
	}
}

// NewLogger accepts a zerolog.Logger as input and returns a new custom dbtype
// logging facade as output.
func NewLogger(logger zerolog.Logger, options ...option) *Logger {
	l := Logger{
		logger: logger,
	}
	l.init(options)
	return &l
}

// NewContextLogger creates a logger that extracts the zerolog.Logger from the
// context.Context by using `zerolog.Ctx`. The zerolog.DefaultContextLogger will be
// used if no logger is associated with the context.
func NewContextLogger(options ...option) *Logger {
	l := Logger{
		fromContext: true,
	}
	l.init(options)
	return &l
}

func (pl *Logger) init(options []option) {
	for _, opt := range options {
		opt(pl)
	}
	if !pl.skipModule {
		pl.logger = pl.logger.With().Str("module", "dbtype").Logger()
	}
}

func (pl *Logger) Log(ctx context.Context, level dbtype.LogLevel, msg string, data map[string]any) {
	var zlevel zerolog.Level
	switch level {
	case dbtype.LogLevelNone:
		zlevel = zerolog.NoLevel
	case dbtype.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case dbtype.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case dbtype.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	var zctx zerolog.Context
	if pl.fromContext {
		logger := zerolog.Ctx(ctx)
		zctx = logger.With()
		if !pl.skipModule {
			zctx = zctx.Str("module", "dbtype")
		}
	} else {
		zctx = pl.logger.With()
	}
	if pl.withFunc != nil {
		zctx = pl.withFunc(ctx, zctx)
	}

	dbtypelog := zctx.Logger()
	event := dbtypelog.WithLevel(zlevel)
	if event.Enabled() {
		if level == dbtype.LogLevelTrace {
			event.Str("DBTYPE_LOG_LEVEL", level.String())
		}
		event.Fields(data).Msg(msg)
	}
}
