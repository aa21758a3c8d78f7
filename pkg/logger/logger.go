package logger

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base    = zap.NewNop()
	logFile *os.File
)

// InitLogger initializes the logger with a JSON file output and a console output.
// An empty filename logs to the console only.
func InitLogger(filename string, level string) error {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return err
		}
	}

	consoleCfg := zap.NewProductionEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime + ".000")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), lvl),
	}

	if filename != "" {
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		logFile = f
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(f), lvl))
	}

	base = zap.New(zapcore.NewTee(cores...), zap.AddCaller()).With(zap.String("service", "cleanflow-sync"))
	zap.ReplaceGlobals(base)
	return nil
}

func Close() {
	_ = base.Sync()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// L returns the process logger. Before InitLogger it discards everything.
func L() *zap.Logger {
	return base
}

// Named returns a child logger tagged with module=name.
func Named(name string) *zap.Logger {
	return base.Named(name).With(zap.String("module", name))
}

// Printf-style helpers kept for call sites that do not carry fields.

func Info(format string, v ...interface{}) {
	base.Sugar().Infof(format, v...)
}

func Infof(format string, v ...interface{}) {
	Info(format, v...)
}

func Error(format string, v ...interface{}) {
	base.Sugar().Errorf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	Error(format, v...)
}

func Warn(format string, v ...interface{}) {
	base.Sugar().Warnf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	Warn(format, v...)
}
