package core

import "go.uber.org/zap"

// ZapLogger adapts a zap sugared logger to the service Logger facade.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps the provided zap logger. A nil logger yields a
// production-configured default.
func NewZapLogger(logger *zap.Logger) (*ZapLogger, error) {
	if logger == nil {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			return nil, err
		}
	}
	return &ZapLogger{sugar: logger.Sugar()}, nil
}

// Debug implements Logger.
func (l *ZapLogger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, kv...) }

// Info implements Logger.
func (l *ZapLogger) Info(msg string, kv ...any) { l.sugar.Infow(msg, kv...) }

// Warn implements Logger.
func (l *ZapLogger) Warn(msg string, kv ...any) { l.sugar.Warnw(msg, kv...) }

// Error implements Logger.
func (l *ZapLogger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, kv...) }

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error { return l.sugar.Sync() }
