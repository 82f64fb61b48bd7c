// Package logger sets up the zap logger used for diagnostics and adapts it
// into a progress sink for request execution.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// S is the package-level logger, set by Init. It is a no-op logger until then.
var S = zap.NewNop().Sugar()

// Options configures New.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // json or console
	Writer io.Writer // defaults to os.Stderr
}

// ParseLevel maps a level name to a zap level. Unknown names map to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a sugared logger from opts.
func New(opts Options) (*zap.SugaredLogger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch opts.Format {
	case "json", "":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q (want json or console)", opts.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), ParseLevel(opts.Level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).Sugar(), nil
}

// Init builds a logger with New and installs it as S.
func Init(opts Options) (*zap.SugaredLogger, error) {
	l, err := New(opts)
	if err != nil {
		return nil, err
	}
	S = l
	return l, nil
}

// Close flushes any buffered log entries.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}
