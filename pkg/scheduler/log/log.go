// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package log provides InfraLogger, a package-level leveled logger in the
// same spirit as the wider scheduler's log.InfraLogger: callers gate
// expensive log construction behind a verbosity check with V(n), then call
// Infof/Warnf/Errorf.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InfraLogger is the process-wide logger. It is safe for concurrent use.
var InfraLogger = &leveledLogger{level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}

var once sync.Once

// Init configures the global logger's verbosity. 0 is info-and-above; each
// increment enables one more level of -v-style debug detail. Init is
// idempotent; only the first call takes effect, matching how a CLI parses
// flags once at startup.
func Init(verbosity int) {
	once.Do(func() {
		level := zapcore.InfoLevel
		if verbosity > 0 {
			level = zapcore.DebugLevel
		}
		InfraLogger.level.SetLevel(level)

		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(os.Stderr), InfraLogger.level)
		InfraLogger.base = zap.New(core).Sugar()
		InfraLogger.verbosity = verbosity
	})
}

type leveledLogger struct {
	base      *zap.SugaredLogger
	level     zap.AtomicLevel
	verbosity int
}

// verboseLogger is returned by V; logging calls on it are no-ops if the
// requested verbosity exceeds the configured level.
type verboseLogger struct {
	enabled bool
	base    *zap.SugaredLogger
}

// V reports whether verbosity level n is enabled, returning a logger that
// silently discards calls when it is not.
func (l *leveledLogger) V(n int) *verboseLogger {
	if l.base == nil {
		Init(0)
	}
	return &verboseLogger{enabled: n <= l.verbosity, base: l.base}
}

func (l *leveledLogger) Infof(format string, args ...interface{}) {
	if l.base == nil {
		Init(0)
	}
	l.base.Infof(format, args...)
}

func (l *leveledLogger) Warnf(format string, args ...interface{}) {
	if l.base == nil {
		Init(0)
	}
	l.base.Warnf(format, args...)
}

func (l *leveledLogger) Errorf(format string, args ...interface{}) {
	if l.base == nil {
		Init(0)
	}
	l.base.Errorf(format, args...)
}

func (v *verboseLogger) Infof(format string, args ...interface{}) {
	if v.enabled {
		v.base.Infof(format, args...)
	}
}

func (v *verboseLogger) Warnf(format string, args ...interface{}) {
	if v.enabled {
		v.base.Warnf(format, args...)
	}
}

func (v *verboseLogger) Errorf(format string, args ...interface{}) {
	if v.enabled {
		v.base.Errorf(format, args...)
	}
}
