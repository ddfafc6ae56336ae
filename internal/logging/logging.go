// Package logging builds the zap logger shared by the CLI and the packages
// it drives.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options control logger construction.
type Options struct {
	// Level is a zap level name ("debug", "info", "warn", "error").
	// Empty means "warn".
	Level string
	// Output defaults to stderr.
	Output io.Writer
	// Color enables coloured level names.
	Color bool
	// Quiet raises the level to error regardless of Level.
	Quiet bool
}

// New returns a console logger without timestamps or callers.
func New(opts Options) (*zap.Logger, error) {
	name := opts.Level
	if name == "" {
		name = "warn"
	}
	level, err := zap.ParseAtomicLevel(name)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	if opts.Quiet && level.Level() < zapcore.ErrorLevel {
		level.SetLevel(zapcore.ErrorLevel)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if opts.Color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(zapcore.AddSync(out)), level)
	return zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr))), nil
}

// Sync flushes log. Errors from syncing a terminal are ignored.
func Sync(log *zap.Logger) {
	if log == nil {
		return
	}
	_ = log.Sync() //nolint:errcheck
}
