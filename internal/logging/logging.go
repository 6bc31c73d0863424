// Package logging wires a package-level zap.Logger through a rotating
// lumberjack sink (SPEC_FULL.md §1.1): structured logging from the B-tree,
// tag system, and async updater goes to a rotating file, never stdout.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// L is the package-level logger, ready to use after Init (or, before Init
// is ever called, a safe no-op logger so early log calls never panic).
var L = zap.NewNop()

var rotate *lumberjack.Logger

// Options configures the rotating sink; zero values fall back to sane
// defaults (100MB, 7 backups, 28 days, compressed).
type Options struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Level      zapcore.Level
}

// DefaultOptions returns the rotation defaults (100 MB, 7 backups, 28 days,
// info level) for a log written to path.
func DefaultOptions(path string) Options {
	return Options{
		Path:       path,
		MaxSizeMB:  100,
		MaxBackups: 7,
		MaxAgeDays: 28,
		Level:      zap.InfoLevel,
	}
}

// Init replaces L with a logger writing JSON records through a rotating
// file sink at opts.Path.
func Init(opts Options) {
	rotate = &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    orDefault(opts.MaxSizeMB, 100),
		MaxBackups: orDefault(opts.MaxBackups, 7),
		MaxAge:     orDefault(opts.MaxAgeDays, 28),
		Compress:   true,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotate), opts.Level)
	L = zap.New(core, zap.AddCaller())
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Sync flushes any buffered log entries; callers should defer this from
// main after Init.
func Sync() error {
	return L.Sync()
}
