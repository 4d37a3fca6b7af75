package xlog

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xstable/lib/infra"
)

var _ XLogger = (*xLogger)(nil)

type xLogger struct {
	logger    atomic.Pointer[zap.Logger]
	ctxFields []string
}

func (l *xLogger) zap() *zap.Logger {
	return l.logger.Load()
}

func (l *xLogger) IncreaseLogLevel(level zapcore.Level) {
	logger := l.logger.Load().WithOptions(zap.IncreaseLevel(level))
	l.logger.Store(logger)
}

func (l *xLogger) Sync() error {
	return l.logger.Load().Sync()
}

func (l *xLogger) Named(component string) XLogger {
	child := &xLogger{ctxFields: l.ctxFields}
	child.logger.Store(l.logger.Load().Named(component))
	return child
}

func (l *xLogger) Debug(msg string, fields ...zap.Field) {
	l.logger.Load().Debug(msg, fields...)
}

func (l *xLogger) Info(msg string, fields ...zap.Field) {
	l.logger.Load().Info(msg, fields...)
}

func (l *xLogger) Warn(msg string, fields ...zap.Field) {
	l.logger.Load().Warn(msg, fields...)
}

func (l *xLogger) Error(err error, msg string, fields ...zap.Field) {
	newFields := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		newFields = append(newFields, zap.String("error", err.Error()))
	}
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) ErrorStack(err error, msg string, fields ...zap.Field) {
	l.logger.Load().Error(msg, append(errorStackFields(err), fields...)...)
}

func (l *xLogger) DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	newFields := extractFieldsFromContext(ctx, l.ctxFields)
	newFields = append(newFields, fields...)
	l.logger.Load().Debug(msg, newFields...)
}

func (l *xLogger) InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	newFields := extractFieldsFromContext(ctx, l.ctxFields)
	newFields = append(newFields, fields...)
	l.logger.Load().Info(msg, newFields...)
}

func (l *xLogger) ErrorContext(ctx context.Context, err error, msg string, fields ...zap.Field) {
	newFields := extractFieldsFromContext(ctx, l.ctxFields)
	newFields = append(newFields, errorStackFields(err)...)
	newFields = append(newFields, fields...)
	l.logger.Load().Error(msg, newFields...)
}

func (l *xLogger) Logf(lvl zapcore.Level, format string, args ...any) {
	l.logger.Load().Log(lvl, fmt.Sprintf(format, args...))
}

func errorStackFields(err error) []zap.Field {
	if err == nil {
		return []zap.Field{}
	}
	if es, ok := err.(infra.ErrorStack); ok && es != nil {
		return []zap.Field{zap.Inline(es)}
	}
	return []zap.Field{zap.String("error", err.Error())}
}

func extractFieldsFromContext(ctx context.Context, keys []string) []zap.Field {
	if ctx == nil || len(keys) == 0 {
		return []zap.Field{}
	}
	newFields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		if v := ctx.Value(key); v != nil {
			newFields = append(newFields, zap.Any(key, v))
		} else {
			newFields = append(newFields, zap.String(key, "nil"))
		}
	}
	return newFields
}

type loggerCfg struct {
	ctxFields   []string
	writerType  *LogOutWriterType
	encoderType *LogEncoderType
	level       *zapcore.Level
	lvlEncoder  zapcore.LevelEncoder
	tsEncoder   zapcore.TimeEncoder
	ws          zapcore.WriteSyncer
}

func (cfg *loggerCfg) build() zapcore.Core {
	if cfg.writerType == nil {
		w := StdOut
		cfg.writerType = &w
	}
	if cfg.encoderType == nil {
		enc := JSON
		cfg.encoderType = &enc
	}
	if cfg.level == nil {
		lvl := getLogLevelOrDefault(os.Getenv("XLOG_LVL"))
		cfg.level = &lvl
	}
	if cfg.lvlEncoder == nil {
		cfg.lvlEncoder = zapcore.CapitalLevelEncoder
	}
	if cfg.tsEncoder == nil {
		cfg.tsEncoder = zapcore.ISO8601TimeEncoder
	}
	if cfg.ws == nil {
		cfg.ws = getOutWriterByType(*cfg.writerType)
	}

	config := zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		EncodeLevel:   cfg.lvlEncoder,
		TimeKey:       "ts",
		EncodeTime:    cfg.tsEncoder,
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		FunctionKey:   coreKeyIgnored,
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
	return zapcore.NewCore(getEncoderByType(*cfg.encoderType)(config), cfg.ws, zap.NewAtomicLevelAt(*cfg.level))
}

type XLoggerOption func(*loggerCfg) error

func NewXLogger(opts ...XLoggerOption) XLogger {
	cfg := &loggerCfg{}
	for _, o := range opts {
		if err := o(cfg); err != nil {
			panic(err)
		}
	}
	xl := &xLogger{ctxFields: cfg.ctxFields}
	// Disable zap logger error stack.
	xl.logger.Store(zap.New(
		cfg.build(),
		zap.AddCallerSkip(1), // Use caller filename as service
		zap.AddCaller(),
	))
	return xl
}

// NewNopXLogger discards every entry. Default of the library components.
func NewNopXLogger() XLogger {
	xl := &xLogger{}
	xl.logger.Store(zap.NewNop())
	return xl
}

func WithXLoggerWriter(w LogOutWriterType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if w >= _writerMax {
			return infra.NewErrorStack("[XLogger] unknown writer")
		}
		cfg.writerType = &w
		return nil
	}
}

func WithXLoggerEncoder(logEnc LogEncoderType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if logEnc >= _encMax {
			return infra.NewErrorStack("[XLogger] unknown encoder")
		}
		cfg.encoderType = &logEnc
		return nil
	}
}

func WithXLoggerLevel(lvl LogLevel) XLoggerOption {
	return func(cfg *loggerCfg) error {
		_lvl := lvl.zapLevel()
		cfg.level = &_lvl
		return nil
	}
}

func WithXLoggerLevelEncoder(lvlEnc zapcore.LevelEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if lvlEnc == nil {
			lvlEnc = zapcore.CapitalColorLevelEncoder
		}
		cfg.lvlEncoder = lvlEnc
		return nil
	}
}

func WithXLoggerTimeEncoder(tsEnc zapcore.TimeEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if tsEnc == nil {
			tsEnc = zapcore.ISO8601TimeEncoder
		}
		cfg.tsEncoder = tsEnc
		return nil
	}
}

func WithXLoggerContextFieldExtract(fields ...string) XLoggerOption {
	return func(cfg *loggerCfg) error {
		for _, field := range fields {
			if len(field) > 0 {
				cfg.ctxFields = append(cfg.ctxFields, field)
			}
		}
		return nil
	}
}

// withXLoggerWriteSyncer replaces the writer, tests only.
func withXLoggerWriteSyncer(ws zapcore.WriteSyncer) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if ws == nil {
			return infra.NewErrorStack("[XLogger] nil write syncer")
		}
		cfg.ws = ws
		return nil
	}
}
