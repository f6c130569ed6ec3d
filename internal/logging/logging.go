// Package logging builds the zap logger shared by every wsgen component.
// Libraries receive a *zap.SugaredLogger through their constructors and fall
// back to Nop when none is given.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for CLI -v counts.
const (
	VerbosityUser  = 0 // results and errors only
	VerbosityInfo  = 1 // -v: progress, mode decisions
	VerbosityDebug = 2 // -vv: resolution steps, written files
)

// Field names for consistent structured logging.
const (
	FieldPath      = "path"
	FieldProject   = "project"
	FieldWorkspace = "workspace"
	FieldMode      = "mode"
	FieldCount     = "count"
	FieldFile      = "file"
	FieldOutput    = "output"
)

// Config controls logger construction.
type Config struct {
	Verbosity int
	JSON      bool
}

// VerbosityToLevel maps -v counts to zap levels.
//
//	0     -> WarnLevel
//	1     -> InfoLevel
//	2+    -> DebugLevel
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New creates a logger writing to stderr. JSON selects zap's production
// encoder; otherwise a compact console encoder is used.
func New(cfg Config) (*zap.SugaredLogger, error) {
	level := zap.NewAtomicLevelAt(VerbosityToLevel(cfg.Verbosity))

	if cfg.JSON {
		zc := zap.NewProductionConfig()
		zc.Level = level
		zc.OutputPaths = []string{"stderr"}
		zc.ErrorOutputPaths = []string{"stderr"}
		l, err := zc.Build()
		if err != nil {
			return nil, err
		}
		return l.Sugar(), nil
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(os.Stderr),
		level,
	)
	return zap.New(core).Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return Nop()
	}
	return l
}
