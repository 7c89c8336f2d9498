package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *slog.Logger
	zapLogger    *zap.Logger
	initMu       sync.Mutex
)

// ParseLevel maps a config string to a slog level. Unknown strings fall back to INFO.
func ParseLevel(levelStr string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO", "":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Init builds a JSON zap logger at the given level and installs a slog
// logger on top of it as the process default. The zap logger is returned for
// components that log through zap directly.
func Init(levelStr string) *zap.Logger {
	initMu.Lock()
	defer initMu.Unlock()

	level, ok := ParseLevel(levelStr)

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(toZapLevel(level))
	zl, err := zapCfg.Build()
	if err != nil {
		// Production config only fails on bad sinks; stderr is always available.
		zl = zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.Lock(os.Stderr), toZapLevel(level)))
	}

	handler := slogzap.Option{Level: level, Logger: zl}.NewZapHandler()
	zapLogger = zl
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)

	if !ok {
		globalLogger.Warn("Invalid log level string, defaulting to INFO", "input", levelStr)
	}
	return zl
}

// Sync flushes buffered zap output.
func Sync() {
	initMu.Lock()
	defer initMu.Unlock()
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
}

func toZapLevel(l slog.Level) zapcore.Level {
	switch {
	case l <= slog.LevelDebug:
		return zapcore.DebugLevel
	case l <= slog.LevelInfo:
		return zapcore.InfoLevel
	case l <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func ensureInitialized() {
	initMu.Lock()
	ready := globalLogger != nil
	initMu.Unlock()
	if !ready {
		Init("INFO")
	}
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	ensureInitialized()
	if globalLogger.Enabled(context.Background(), slog.LevelDebug) {
		globalLogger.Debug(msg, args...)
	}
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Info(msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Warn(msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
}

// Fatal logs a message at ErrorLevel then exits.
func Fatal(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
	Sync()
	os.Exit(1)
}
