package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. It discards everything until Initialize runs.
var Log = zap.NewNop()

// Config holds logger configuration
type Config struct {
	Level       string
	LogDir      string
	Environment string
	ServiceName string
}

// Initialize builds the global logger: colored console output in development,
// JSON elsewhere, plus rotated files in production when LogDir is set.
func Initialize(cfg Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return fmt.Errorf("invalid log level %s: %w", cfg.Level, err)
		}
	}

	enabled := zap.NewAtomicLevelAt(level)
	encoder := newEncoder(cfg.Environment)
	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), enabled)}

	if cfg.Environment == "production" && cfg.LogDir != "" {
		fileCores, err := rotatedCores(cfg.LogDir, encoder, enabled)
		if err != nil {
			return err
		}
		cores = append(cores, fileCores...)
	}

	log := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if cfg.ServiceName != "" {
		log = log.With(zap.String("service", cfg.ServiceName))
	}

	Log = log
	return nil
}

func newEncoder(environment string) zapcore.Encoder {
	if environment == "development" {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}

	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(ec)
}

// rotatedCores writes everything to app.log and errors again to error.log
func rotatedCores(dir string, encoder zapcore.Encoder, enabled zapcore.LevelEnabler) ([]zapcore.Core, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotate := func(name string, maxSizeMB, maxAgeDays int) zapcore.WriteSyncer {
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(dir, name),
			MaxSize:    maxSizeMB,
			MaxBackups: 5,
			MaxAge:     maxAgeDays,
			Compress:   true,
		})
	}

	return []zapcore.Core{
		zapcore.NewCore(encoder, rotate("app.log", 100, 14), enabled),
		zapcore.NewCore(encoder, rotate("error.log", 50, 30), zapcore.ErrorLevel),
	}, nil
}

func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }

// Fatal logs and exits the process
func Fatal(msg string, fields ...zap.Field) { Log.Fatal(msg, fields...) }

// Sync flushes buffered entries
func Sync() {
	_ = Log.Sync()
}

// LogHTTPRequest logs one served request. The level follows the status class.
func LogHTTPRequest(method, path string, statusCode int, duration float64, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", statusCode),
		zap.Float64("duration", duration),
	}, fields...)

	switch {
	case statusCode >= 500:
		Error("HTTP request failed", all...)
	case statusCode >= 400:
		Warn("HTTP request client error", all...)
	default:
		Info("HTTP request", all...)
	}
}

// LogAPICall logs a call to a backing service such as the database or object storage
func LogAPICall(service, operation, status string, duration float64, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("service", service),
		zap.String("operation", operation),
		zap.String("status", status),
		zap.Float64("duration", duration),
	}, fields...)

	if status == "error" {
		Error("API call failed", all...)
		return
	}
	Debug("API call", all...)
}

// LogError logs err with a message and extra context
func LogError(err error, msg string, fields ...zap.Field) {
	Error(msg, append([]zap.Field{zap.Error(err)}, fields...)...)
}
