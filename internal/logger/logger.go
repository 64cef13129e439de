// Package logger provides structured logging for the pagesift service and
// bridges it into the pipeline's observability.Logger port.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pagesift/pagesift/observability"
)

// Config holds logger configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // pretty-print for development
	Output     io.Writer
	WithCaller bool
}

// New creates a zerolog logger configured for the service.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", "pagesift").
		Logger()

	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}
	return zlog
}

// Bridge adapts a zerolog logger to the pipeline's observability.Logger port.
type Bridge struct {
	zlog zerolog.Logger
}

// NewBridge wraps a zerolog logger for injection into the document processor.
func NewBridge(zlog zerolog.Logger) *Bridge {
	return &Bridge{zlog: zlog}
}

func (b *Bridge) Debug(msg string, fields ...observability.Field) {
	b.emit(b.zlog.Debug(), msg, fields)
}

func (b *Bridge) Info(msg string, fields ...observability.Field) {
	b.emit(b.zlog.Info(), msg, fields)
}

func (b *Bridge) Warn(msg string, fields ...observability.Field) {
	b.emit(b.zlog.Warn(), msg, fields)
}

func (b *Bridge) Error(msg string, fields ...observability.Field) {
	b.emit(b.zlog.Error(), msg, fields)
}

func (b *Bridge) With(fields ...observability.Field) observability.Logger {
	ctx := b.zlog.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key(), f.Value())
	}
	return &Bridge{zlog: ctx.Logger()}
}

func (b *Bridge) emit(event *zerolog.Event, msg string, fields []observability.Field) {
	for _, f := range fields {
		switch v := f.Value().(type) {
		case string:
			event = event.Str(f.Key(), v)
		case int:
			event = event.Int(f.Key(), v)
		case float64:
			event = event.Float64(f.Key(), v)
		case time.Duration:
			event = event.Dur(f.Key(), v)
		case error:
			event = event.AnErr(f.Key(), v)
		default:
			event = event.Interface(f.Key(), v)
		}
	}
	event.Msg(msg)
}
