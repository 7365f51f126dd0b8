// Package logging provides the process-wide structured logger, request-scoped
// loggers carrying Cloud Trace correlation, and audit events.
package logging

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/janisto/devconnector-api/internal/platform/timeutil"
)

var (
	loggerMu   sync.Mutex
	loggerOnce sync.Once
	baseLogger *zap.Logger
)

// encoderConfig produces JSON lines understood by Cloud Logging.
func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = encodeTimeMicros
	cfg.LevelKey = "severity"
	cfg.EncodeLevel = encodeSeverity
	cfg.MessageKey = "message"
	cfg.CallerKey = "caller"
	cfg.StacktraceKey = "stack_trace"
	return cfg
}

func encodeTimeMicros(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(timeutil.RFC3339Micros))
}

// encodeSeverity maps zap levels to Cloud Logging severity names.
func encodeSeverity(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	severity := "DEFAULT"
	switch level {
	case zapcore.DebugLevel:
		severity = "DEBUG"
	case zapcore.InfoLevel:
		severity = "INFO"
	case zapcore.WarnLevel:
		severity = "WARNING"
	case zapcore.ErrorLevel:
		severity = "ERROR"
	case zapcore.DPanicLevel:
		severity = "CRITICAL"
	case zapcore.PanicLevel:
		severity = "ALERT"
	case zapcore.FatalLevel:
		severity = "EMERGENCY"
	}
	enc.AppendString(severity)
}

// New builds a logger writing JSON entries at info level and above to w.
func New(w zapcore.WriteSyncer) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), w, zap.InfoLevel)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

// Logger returns the process-wide logger, writing to stdout.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		loggerMu.Lock()
		defer loggerMu.Unlock()
		if baseLogger == nil {
			baseLogger = New(zapcore.Lock(os.Stdout))
		}
	})
	loggerMu.Lock()
	defer loggerMu.Unlock()
	return baseLogger
}

// SetLogger replaces the process-wide logger and returns a function restoring
// the previous one.
func SetLogger(l *zap.Logger) (restore func()) {
	prev := Logger()
	loggerMu.Lock()
	baseLogger = l
	loggerMu.Unlock()
	return func() {
		loggerMu.Lock()
		baseLogger = prev
		loggerMu.Unlock()
	}
}

// Sync flushes buffered entries. Call during shutdown.
func Sync() error {
	return Logger().Sync()
}
